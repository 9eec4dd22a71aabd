// Package tracker runs result submissions against stored personal bests.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/typebest/internal/funbox"
	"github.com/verte-zerg/typebest/internal/model"
	"github.com/verte-zerg/typebest/internal/pb"
	"github.com/verte-zerg/typebest/internal/store"
)

// ErrEmptyUser is returned when a call has no user id.
var ErrEmptyUser = errors.New("user id is required")

// Store is the persistence the service needs.
type Store interface {
	LoadProfile(ctx context.Context, userID string) (store.Profile, error)
	SaveSubmission(ctx context.Context, profile *store.Profile, record model.ResultRecord) error
	ListResults(ctx context.Context, userID string, limit int) ([]model.ResultRecord, error)
}

// Outcome describes what one submission changed.
type Outcome struct {
	ResultID        string                `json:"resultId"`
	IsPb            bool                  `json:"isPb"`
	FunboxEligible  bool                  `json:"funboxEligible"`
	PersonalBests   model.PersonalBests   `json:"personalBests,omitempty"`
	LbPersonalBests model.LbPersonalBests `json:"lbPersonalBests,omitempty"`
}

// Service serializes submissions per user and persists their effects.
type Service struct {
	store            Store
	funboxes         *funbox.Registry
	logger           *zap.Logger
	now              func() time.Time
	newID            func() string
	trackLeaderboard bool
	locks            *userLocks
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFunboxes replaces the built-in funbox registry.
func WithFunboxes(r *funbox.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.funboxes = r
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides result id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithLeaderboardTracking toggles leaderboard-best updates. Enabled by default.
func WithLeaderboardTracking(enabled bool) Option {
	return func(s *Service) {
		s.trackLeaderboard = enabled
	}
}

// New constructs a Service.
func New(st Store, opts ...Option) *Service {
	s := &Service{
		store:            st,
		funboxes:         funbox.Default(),
		logger:           zap.NewNop(),
		now:              time.Now,
		newID:            func() string { return uuid.NewString() },
		trackLeaderboard: true,
		locks:            newUserLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records result for userID and updates their personal bests when the
// result's funbox allows it. Submissions for the same user run one at a time.
func (s *Service) Submit(ctx context.Context, userID string, result model.Result) (Outcome, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Outcome{}, ErrEmptyUser
	}
	if result.Mode == "" || result.Mode2 == "" {
		return Outcome{}, fmt.Errorf("%w: mode and mode2 are required", pb.ErrMissingResultData)
	}

	now := s.now()
	record := model.ResultRecord{
		ID:          s.newID(),
		UserID:      userID,
		Result:      result,
		SubmittedAt: now,
	}
	logger := s.logger.With(
		zap.String("user", userID),
		zap.String("result_id", record.ID),
		zap.String("mode", result.Mode),
		zap.String("mode2", result.Mode2),
	)

	if !s.funboxes.CanGetPb(result.Funbox) {
		if err := s.store.SaveSubmission(ctx, nil, record); err != nil {
			return Outcome{}, fmt.Errorf("failed to save result: %w", err)
		}
		logger.Info("result recorded without pb check", zap.String("funbox", result.Funbox))
		return Outcome{ResultID: record.ID}, nil
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	profile, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load profile: %w", err)
	}
	var lb model.LbPersonalBests
	if s.trackLeaderboard {
		lb = profile.LbPersonalBests
		if lb == nil {
			lb = model.LbPersonalBests{}
		}
	}

	out, err := pb.CheckAndUpdate(profile.PersonalBests, lb, result, now)
	if err != nil {
		logger.Warn("rejected result", zap.Error(err))
		return Outcome{}, err
	}

	profile.PersonalBests = out.PersonalBests
	profile.LbPersonalBests = out.LbPersonalBests
	profile.UpdatedAt = now
	record.IsPb = out.IsPb
	if err := s.store.SaveSubmission(ctx, &profile, record); err != nil {
		return Outcome{}, fmt.Errorf("failed to save submission: %w", err)
	}

	fields := []zap.Field{zap.Bool("is_pb", out.IsPb)}
	if result.Wpm != nil {
		fields = append(fields, zap.Float64("wpm", *result.Wpm))
	}
	logger.Info("result processed", fields...)

	return Outcome{
		ResultID:        record.ID,
		IsPb:            out.IsPb,
		FunboxEligible:  true,
		PersonalBests:   out.PersonalBests,
		LbPersonalBests: out.LbPersonalBests,
	}, nil
}

// PersonalBests returns the stored personal bests for userID.
func (s *Service) PersonalBests(ctx context.Context, userID string) (model.PersonalBests, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.PersonalBests, nil
}

// LeaderboardBests returns the stored leaderboard bests for userID, empty
// when none were recorded.
func (s *Service) LeaderboardBests(ctx context.Context, userID string) (model.LbPersonalBests, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.LbPersonalBests == nil {
		return model.LbPersonalBests{}, nil
	}
	return profile.LbPersonalBests, nil
}

// History returns the user's latest results, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]model.ResultRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUser
	}
	records, err := s.store.ListResults(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return records, nil
}

// Funboxes returns the registered modifiers sorted by name.
func (s *Service) Funboxes() []funbox.Funbox {
	return s.funboxes.List()
}

func (s *Service) loadProfile(ctx context.Context, userID string) (store.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return store.Profile{}, ErrEmptyUser
	}
	profile, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return store.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}
