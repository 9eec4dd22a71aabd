package pb

import "github.com/verte-zerg/typebest/internal/model"

var leaderboardMode2 = map[string]struct{}{
	"15": {},
	"60": {},
}

// ShouldUpdateLeaderboard reports whether a result's configuration is tracked
// on the leaderboards: time 15 or time 60 without lazy mode.
func ShouldUpdateLeaderboard(result model.Result) bool {
	if result.Mode != model.ModeTime {
		return false
	}
	if _, ok := leaderboardMode2[result.Mode2]; !ok {
		return false
	}
	return result.LazyMode == nil || !*result.LazyMode
}

// UpdateLeaderboardPersonalBests folds the best record per language of the
// result's mode/mode2 bucket into lbPBs. The per-language best is recomputed
// from the whole bucket on every call, so a variant touched by this result
// never hides a faster variant of the same language.
func UpdateLeaderboardPersonalBests(userPBs model.PersonalBests, lbPBs model.LbPersonalBests, result model.Result) {
	if lbPBs == nil || !ShouldUpdateLeaderboard(result) {
		return
	}
	mode, mode2 := result.Mode, result.Mode2

	if lbPBs[mode] == nil {
		lbPBs[mode] = map[string]map[string]model.PersonalBest{}
	}
	if lbPBs[mode][mode2] == nil {
		lbPBs[mode][mode2] = map[string]model.PersonalBest{}
	}
	board := lbPBs[mode][mode2]

	for language, best := range bestForEveryLanguage(userPBs[mode][mode2]) {
		current, ok := board[language]
		if !ok || current.Wpm < best.Wpm {
			board[language] = best
		}
	}
}

// bestForEveryLanguage keeps the first highest-wpm record per language.
func bestForEveryLanguage(bucket []model.PersonalBest) map[string]model.PersonalBest {
	best := make(map[string]model.PersonalBest)
	for _, pb := range bucket {
		current, ok := best[pb.Language]
		if !ok || current.Wpm < pb.Wpm {
			best[pb.Language] = pb
		}
	}
	return best
}
