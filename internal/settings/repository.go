package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for settings persistence.
type Repository interface {
	Get(ctx context.Context, userID string) (*Settings, error)
	Save(ctx context.Context, userID string, patch *Patch) (*Settings, error)
	GetProfile(ctx context.Context, userID string) (Section, error)
	SaveProfile(ctx context.Context, userID string, partial Section) (Section, error)
	MarkPasswordReset(ctx context.Context, userID string) (time.Time, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed settings repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns a user's settings, falling back to defaults when the user
// has never saved anything.
func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*Settings, error) {
	s, found, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return Defaults(), nil
	}
	return s, nil
}

// Save merges the patch over the user's current settings section by
// section and persists the result.
func (r *SQLiteRepository) Save(ctx context.Context, userID string, patch *Patch) (*Settings, error) {
	current, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := &Settings{
		Profile:             current.Profile,
		Notifications:       merge(current.Notifications, patch.Notifications),
		Automation:          merge(current.Automation, patch.Automation),
		Appearance:          merge(current.Appearance, patch.Appearance),
		System:              merge(current.System, patch.System),
		LastPasswordResetAt: current.LastPasswordResetAt,
	}

	if err := r.store(ctx, userID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// GetProfile returns just the profile section.
func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (Section, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Profile, nil
}

// SaveProfile merges partial keys into the profile section only.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, userID string, partial Section) (Section, error) {
	current, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	current.Profile = merge(current.Profile, partial)
	if err := r.store(ctx, userID, current); err != nil {
		return nil, err
	}
	return current.Profile, nil
}

// MarkPasswordReset stamps the password reset timestamp and returns it.
func (r *SQLiteRepository) MarkPasswordReset(ctx context.Context, userID string) (time.Time, error) {
	current, err := r.Get(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	current.LastPasswordResetAt = &now

	if err := r.store(ctx, userID, current); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// load reads the stored settings row. found is false when none exists.
func (r *SQLiteRepository) load(ctx context.Context, userID string) (*Settings, bool, error) {
	var profile, notifications, automation, appearance, system string
	var lastReset sql.NullString
	var updatedAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT profile, notifications, automation, appearance, system, last_password_reset_at, updated_at
		 FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&profile, &notifications, &automation, &appearance, &system, &lastReset, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading settings: %w", err)
	}

	s := &Settings{}
	for _, col := range []struct {
		raw  string
		dest *Section
	}{
		{profile, &s.Profile},
		{notifications, &s.Notifications},
		{automation, &s.Automation},
		{appearance, &s.Appearance},
		{system, &s.System},
	} {
		section := Section{}
		if col.raw != "" {
			if err := json.Unmarshal([]byte(col.raw), &section); err != nil {
				return nil, false, fmt.Errorf("decoding settings section: %w", err)
			}
		}
		*col.dest = section
	}

	if lastReset.Valid {
		if t, err := time.Parse(time.RFC3339, lastReset.String); err == nil {
			s.LastPasswordResetAt = &t
		}
	}
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return s, true, nil
}

// store upserts the full settings row.
func (r *SQLiteRepository) store(ctx context.Context, userID string, s *Settings) error {
	cols := make([]string, 0, 5) //nolint:mnd // five JSON sections
	for _, section := range []Section{s.Profile, s.Notifications, s.Automation, s.Appearance, s.System} {
		b, err := json.Marshal(section)
		if err != nil {
			return fmt.Errorf("encoding settings section: %w", err)
		}
		cols = append(cols, string(b))
	}

	var lastReset any
	if s.LastPasswordResetAt != nil {
		lastReset = s.LastPasswordResetAt.UTC().Format(time.RFC3339)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, profile, notifications, automation, appearance, system, last_password_reset_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     profile = excluded.profile,
		     notifications = excluded.notifications,
		     automation = excluded.automation,
		     appearance = excluded.appearance,
		     system = excluded.system,
		     last_password_reset_at = excluded.last_password_reset_at,
		     updated_at = excluded.updated_at`,
		userID, cols[0], cols[1], cols[2], cols[3], cols[4], lastReset, now,
	)
	if err != nil {
		return fmt.Errorf("storing settings: %w", err)
	}
	return nil
}
