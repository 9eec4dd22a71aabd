// Package pb matches results against personal bests and folds qualifying
// results into per-language leaderboard bests.
package pb

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/typebest/internal/model"
)

// ErrMissingResultData is matched by every error caused by an incomplete result.
var ErrMissingResultData = errors.New("missing result data")

// MissingDataError names the stage and the first absent field.
type MissingDataError struct {
	Stage string
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s (%s): %s", ErrMissingResultData, e.Stage, e.Field)
}

// Is reports whether target is ErrMissingResultData.
func (e *MissingDataError) Is(target error) bool {
	return target == ErrMissingResultData
}

// Outcome is the result of CheckAndUpdate.
type Outcome struct {
	IsPb            bool
	PersonalBests   model.PersonalBests
	LbPersonalBests model.LbPersonalBests
}

// CheckAndUpdate applies result to the user's personal bests and, when lbPBs
// is non-nil, to their leaderboard bests. Both maps are mutated in place and
// returned; a nil userPBs is replaced by a new map. Callers must not run two
// calls against the same maps concurrently.
//
// Funbox eligibility is not checked here.
func CheckAndUpdate(userPBs model.PersonalBests, lbPBs model.LbPersonalBests, result model.Result, now time.Time) (Outcome, error) {
	if result.Mode == "" {
		return Outcome{}, &MissingDataError{Stage: "checkAndUpdate", Field: "mode"}
	}
	if result.Mode2 == "" {
		return Outcome{}, &MissingDataError{Stage: "checkAndUpdate", Field: "mode2"}
	}
	if userPBs == nil {
		userPBs = model.PersonalBests{}
	}
	if userPBs[result.Mode] == nil {
		userPBs[result.Mode] = map[string][]model.PersonalBest{}
	}
	if userPBs[result.Mode][result.Mode2] == nil {
		userPBs[result.Mode][result.Mode2] = []model.PersonalBest{}
	}
	bucket := userPBs[result.Mode][result.Mode2]

	match := -1
	for i := range bucket {
		ok, err := matchesPersonalBest(result, bucket[i])
		if err != nil {
			return Outcome{}, err
		}
		if ok {
			match = i
			break
		}
	}

	isPb := true
	if match >= 0 {
		updated, err := updatePersonalBest(&bucket[match], result, now)
		if err != nil {
			return Outcome{}, err
		}
		isPb = updated
	} else {
		built, err := buildPersonalBest(result, now)
		if err != nil {
			return Outcome{}, err
		}
		userPBs[result.Mode][result.Mode2] = append(bucket, built)
	}

	if lbPBs != nil {
		UpdateLeaderboardPersonalBests(userPBs, lbPBs, result)
	}

	return Outcome{
		IsPb:            isPb,
		PersonalBests:   userPBs,
		LbPersonalBests: lbPBs,
	}, nil
}

func matchesPersonalBest(result model.Result, pb model.PersonalBest) (bool, error) {
	if err := requireVariant(result, "matchesPersonalBest"); err != nil {
		return false, err
	}
	return result.Difficulty == pb.Difficulty &&
		result.Language == pb.Language &&
		*result.Punctuation == pb.Punctuation &&
		*result.LazyMode == pb.LazyMode &&
		*result.Numbers == pb.Numbers, nil
}

func updatePersonalBest(pb *model.PersonalBest, result model.Result, now time.Time) (bool, error) {
	if result.Wpm != nil && pb.Wpm >= *result.Wpm {
		return false, nil
	}
	if err := requireComplete(result, "updatePersonalBest"); err != nil {
		return false, err
	}
	pb.Difficulty = result.Difficulty
	pb.Language = result.Language
	pb.Punctuation = *result.Punctuation
	pb.LazyMode = *result.LazyMode
	pb.Acc = *result.Acc
	pb.Consistency = *result.Consistency
	pb.Raw = *result.RawWpm
	pb.Wpm = *result.Wpm
	pb.Numbers = *result.Numbers
	pb.Timestamp = now.UnixMilli()
	return true, nil
}

func buildPersonalBest(result model.Result, now time.Time) (model.PersonalBest, error) {
	if err := requireComplete(result, "buildPersonalBest"); err != nil {
		return model.PersonalBest{}, err
	}
	return model.PersonalBest{
		Acc:         *result.Acc,
		Consistency: *result.Consistency,
		Difficulty:  result.Difficulty,
		LazyMode:    *result.LazyMode,
		Language:    result.Language,
		Punctuation: *result.Punctuation,
		Raw:         *result.RawWpm,
		Wpm:         *result.Wpm,
		Numbers:     *result.Numbers,
		Timestamp:   now.UnixMilli(),
	}, nil
}

func requireVariant(result model.Result, stage string) error {
	switch {
	case result.Difficulty == "":
		return &MissingDataError{Stage: stage, Field: "difficulty"}
	case result.Language == "":
		return &MissingDataError{Stage: stage, Field: "language"}
	case result.Punctuation == nil:
		return &MissingDataError{Stage: stage, Field: "punctuation"}
	case result.LazyMode == nil:
		return &MissingDataError{Stage: stage, Field: "lazyMode"}
	case result.Numbers == nil:
		return &MissingDataError{Stage: stage, Field: "numbers"}
	}
	return nil
}

func requireComplete(result model.Result, stage string) error {
	if err := requireVariant(result, stage); err != nil {
		return err
	}
	switch {
	case result.Acc == nil:
		return &MissingDataError{Stage: stage, Field: "acc"}
	case result.Consistency == nil:
		return &MissingDataError{Stage: stage, Field: "consistency"}
	case result.RawWpm == nil:
		return &MissingDataError{Stage: stage, Field: "rawWpm"}
	case result.Wpm == nil:
		return &MissingDataError{Stage: stage, Field: "wpm"}
	}
	return nil
}
