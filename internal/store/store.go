// Package store persists personal-best profiles and submitted results.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/typebest/internal/model"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Options selects and locates the database.
type Options struct {
	Driver string
	Path   string
	URL    string
}

// Profile is a user's personal-best state. LbPersonalBests is nil when the
// user has no leaderboard document yet.
type Profile struct {
	UserID          string
	PersonalBests   model.PersonalBests
	LbPersonalBests model.LbPersonalBests
	UpdatedAt       time.Time
}

// Store wraps database access for profiles and results.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens or creates the database and applies migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}
	if dialect.Name() == "sqlite" {
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, err
		}
	} else if opts.URL == "" {
		return nil, fmt.Errorf("%s url is empty", dialect.Name())
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(opts))
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, dialect: dialect}
	if err := store.init(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on init failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the dialect name in use.
func (s *Store) Driver() string {
	return s.dialect.Name()
}

func (s *Store) init(ctx context.Context) error {
	if err := s.dialect.Configure(s.db); err != nil {
		return fmt.Errorf("failed to configure connection: %w", err)
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) q(query string) string {
	return s.dialect.RewriteQuery(query)
}

// LoadProfile returns the stored profile for userID, or an empty profile.
func (s *Store) LoadProfile(ctx context.Context, userID string) (Profile, error) {
	profile := Profile{UserID: userID, PersonalBests: model.PersonalBests{}}

	var pbsDoc string
	var lbDoc sql.NullString
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT personal_bests, lb_personal_bests, updated_at FROM profiles WHERE user_id = ?`),
		userID,
	).Scan(&pbsDoc, &lbDoc, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return profile, nil
	}
	if err != nil {
		return Profile{}, err
	}

	pbs, err := model.DecodePersonalBests([]byte(pbsDoc))
	if err != nil {
		return Profile{}, err
	}
	profile.PersonalBests = pbs
	if lbDoc.Valid {
		lb, err := model.DecodeLbPersonalBests([]byte(lbDoc.String))
		if err != nil {
			return Profile{}, err
		}
		profile.LbPersonalBests = lb
	}
	parsed, err := time.Parse(timeLayout, updatedAt)
	if err != nil {
		return Profile{}, err
	}
	profile.UpdatedAt = parsed
	return profile, nil
}

// SaveSubmission stores the result and, when profile is non-nil, the updated
// profile in one transaction. A nil LbPersonalBests keeps the stored one.
func (s *Store) SaveSubmission(ctx context.Context, profile *Profile, record model.ResultRecord) (err error) {
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if profile != nil {
		pbsDoc, err := json.Marshal(profile.PersonalBests)
		if err != nil {
			return fmt.Errorf("failed to encode personal bests: %w", err)
		}
		var lbDoc sql.NullString
		if profile.LbPersonalBests != nil {
			raw, err := json.Marshal(profile.LbPersonalBests)
			if err != nil {
				return fmt.Errorf("failed to encode leaderboard bests: %w", err)
			}
			lbDoc = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, s.q(s.dialect.UpsertProfileQuery()),
			profile.UserID,
			string(pbsDoc),
			lbDoc,
			profile.UpdatedAt.UTC().Format(timeLayout),
		); err != nil {
			return err
		}
	}

	var wpm sql.NullFloat64
	if record.Result.Wpm != nil {
		wpm = sql.NullFloat64{Float64: *record.Result.Wpm, Valid: true}
	}
	isPb := 0
	if record.IsPb {
		isPb = 1
	}
	if _, err := tx.ExecContext(ctx,
		s.q(`INSERT INTO results (id, user_id, mode, mode2, wpm, payload, is_pb, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		record.ID,
		record.UserID,
		record.Result.Mode,
		record.Result.Mode2,
		wpm,
		string(payload),
		isPb,
		record.SubmittedAt.UTC().Format(timeLayout),
	); err != nil {
		return err
	}

	return tx.Commit()
}

// ListResults returns the most recent results for userID, newest first.
// A non-positive limit returns all of them.
func (s *Store) ListResults(ctx context.Context, userID string, limit int) ([]model.ResultRecord, error) {
	query := `SELECT id, user_id, payload, is_pb, submitted_at FROM results
		WHERE user_id = ?
		ORDER BY submitted_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ResultRecord
	for rows.Next() {
		var rec model.ResultRecord
		var payload, submittedAt string
		var isPb int
		if err := rows.Scan(&rec.ID, &rec.UserID, &payload, &isPb, &submittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to decode result %s: %w", rec.ID, err)
		}
		parsed, err := time.Parse(timeLayout, submittedAt)
		if err != nil {
			return nil, err
		}
		rec.IsPb = isPb != 0
		rec.SubmittedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
