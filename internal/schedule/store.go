package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
)

// Store persists weekly schedules, entries, and skip overrides.
type Store struct {
	db  *sql.DB
	log *logging.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewStore creates a schedule store.
func NewStore(db *sql.DB, log *logging.Logger) *Store {
	return &Store{db: db, log: log, now: time.Now}
}

// EnsureDefault creates an enabled, empty schedule for a device if none
// exists. Called on every successful claim; repeat calls are no-ops.
func (s *Store) EnsureDefault(ctx context.Context, deviceID string) error {
	now := s.now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedules (id, device_id, name, enabled, created_at, updated_at)
		 VALUES (?, ?, 'Default', 1, ?, ?)
		 ON CONFLICT(device_id) DO NOTHING`,
		"sch-"+uuid.NewString()[:8], deviceID, now, now,
	)
	if err != nil {
		return fmt.Errorf("ensuring default schedule: %w", err)
	}
	return nil
}

// Get returns the full weekly program for a device, grouped by day code.
// A device with no schedule row yields an empty, disabled result rather
// than an error.
func (s *Store) Get(ctx context.Context, deviceID string) (*WeeklySchedule, error) {
	result := &WeeklySchedule{
		DeviceID: deviceID,
		ByDay:    make(map[string][]Entry),
	}

	var scheduleID string
	var enabled int
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, enabled, updated_at FROM schedules WHERE device_id = ?", deviceID,
	).Scan(&scheduleID, &enabled, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return nil, fmt.Errorf("reading schedule: %w", err)
	}

	result.Enabled = enabled != 0
	result.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day_of_week, start_time, timezone, action, enabled
		 FROM schedule_entries WHERE schedule_id = ? ORDER BY day_of_week, start_time`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("reading schedule entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var dayName string
		var entryEnabled int
		if err := rows.Scan(&e.ID, &dayName, &e.StartTime, &e.Timezone, &e.Action, &entryEnabled); err != nil {
			return nil, fmt.Errorf("scanning schedule entry: %w", err)
		}

		// Rows with a day name outside the fixed map are dropped.
		code, ok := nameToCode(dayName)
		if !ok {
			continue
		}

		e.Day = code
		e.Enabled = entryEnabled != 0
		result.ByDay[code] = append(result.ByDay[code], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule entries: %w", err)
	}

	skipped, err := s.skippedToday(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	result.SkipToday = skipped

	return result, nil
}

// Save replaces a device's entire weekly program in one transaction and
// returns the number of entries written. Unknown day codes are dropped;
// invalid actions or start times reject the whole save.
func (s *Store) Save(ctx context.Context, deviceID string, byDay map[string][]EntryInput, timezone string) (int, error) {
	if timezone == "" {
		timezone = "UTC"
	}

	for code, entries := range byDay {
		if _, ok := codeToName(code); !ok {
			continue
		}
		for _, e := range entries {
			if !validAction(e.Action) {
				return 0, fmt.Errorf("%w: %q", ErrInvalidAction, e.Action)
			}
			if _, err := time.Parse("15:04", e.StartTime); err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidStartTime, e.StartTime)
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := s.now().UTC().Format(time.RFC3339)

	// The schedule row itself survives saves; only the program is replaced.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schedules (id, device_id, name, enabled, created_at, updated_at)
		 VALUES (?, ?, 'Default', 1, ?, ?)
		 ON CONFLICT(device_id) DO UPDATE SET updated_at = excluded.updated_at`,
		"sch-"+uuid.NewString()[:8], deviceID, now, now,
	); err != nil {
		return 0, fmt.Errorf("upserting schedule: %w", err)
	}

	var scheduleID string
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM schedules WHERE device_id = ?", deviceID,
	).Scan(&scheduleID); err != nil {
		return 0, fmt.Errorf("resolving schedule id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schedule_entries WHERE schedule_id = ?", scheduleID,
	); err != nil {
		return 0, fmt.Errorf("clearing schedule entries: %w", err)
	}

	inserted := 0
	for _, day := range dayCodes {
		for _, e := range byDay[day.code] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schedule_entries (id, schedule_id, day_of_week, start_time, timezone, action, enabled)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				"ent-"+uuid.NewString()[:8], scheduleID, day.name, e.StartTime, timezone, e.Action, boolToInt(e.Enabled),
			); err != nil {
				return 0, fmt.Errorf("inserting schedule entry: %w", err)
			}
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing save: %w", err)
	}

	s.log.Info("schedule saved", "device_id", deviceID, "entries", inserted)

	return inserted, nil
}

// SetState changes a schedule's activation.
//
//   - "today": record a skip override for the current UTC date, expiring
//     at the end of that day; repeating it is a no-op.
//   - "all": disable the schedule entirely.
//   - "enable": re-enable it and purge overrides dated today or later.
func (s *Store) SetState(ctx context.Context, deviceID, scope string) error {
	switch scope {
	case ScopeToday:
		return s.skipToday(ctx, deviceID)
	case ScopeAll:
		return s.setEnabled(ctx, deviceID, false)
	case ScopeEnable:
		if err := s.setEnabled(ctx, deviceID, true); err != nil {
			return err
		}
		return s.purgeUpcomingOverrides(ctx, deviceID)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
}

// IsActiveToday reports whether schedule-sourced commands should run for
// the device right now: the schedule exists, is enabled, and today is
// not skipped.
func (s *Store) IsActiveToday(ctx context.Context, deviceID string) (bool, error) {
	var enabled int
	err := s.db.QueryRowContext(ctx,
		"SELECT enabled FROM schedules WHERE device_id = ?", deviceID,
	).Scan(&enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("reading schedule state: %w", err)
	}
	if enabled == 0 {
		return false, nil
	}

	skipped, err := s.skippedToday(ctx, deviceID)
	if err != nil {
		return false, err
	}
	return !skipped, nil
}

// skipToday upserts the override row for the current UTC date.
func (s *Store) skipToday(ctx context.Context, deviceID string) error {
	now := s.now().UTC()
	date := now.Format("2006-01-02")
	expires := date + "T23:59:59Z"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_overrides (device_id, date, type, expires_at, created_at)
		 VALUES (?, ?, 'skip', ?, ?)
		 ON CONFLICT(device_id, date) DO UPDATE SET expires_at = excluded.expires_at`,
		deviceID, date, expires, now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording skip override: %w", err)
	}

	s.log.Info("schedule skipped for today", "device_id", deviceID, "date", date)
	return nil
}

func (s *Store) setEnabled(ctx context.Context, deviceID string, enabled bool) error {
	now := s.now().UTC().Format(time.RFC3339)

	result, err := s.db.ExecContext(ctx,
		"UPDATE schedules SET enabled = ?, updated_at = ? WHERE device_id = ?",
		boolToInt(enabled), now, deviceID,
	)
	if err != nil {
		return fmt.Errorf("updating schedule state: %w", err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrScheduleNotFound
	}

	s.log.Info("schedule state changed", "device_id", deviceID, "enabled", enabled)
	return nil
}

// purgeUpcomingOverrides removes overrides dated today or later, so a
// re-enabled schedule runs immediately. Past-dated rows are left for
// history.
func (s *Store) purgeUpcomingOverrides(ctx context.Context, deviceID string) error {
	today := s.now().UTC().Format("2006-01-02")

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM schedule_overrides WHERE device_id = ? AND date >= ?",
		deviceID, today,
	)
	if err != nil {
		return fmt.Errorf("purging overrides: %w", err)
	}
	return nil
}

// skippedToday reports whether an unexpired skip override exists for the
// current UTC date.
func (s *Store) skippedToday(ctx context.Context, deviceID string) (bool, error) {
	now := s.now().UTC()
	date := now.Format("2006-01-02")

	var expiresAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT expires_at FROM schedule_overrides WHERE device_id = ? AND date = ?",
		deviceID, date,
	).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("reading skip override: %w", err)
	}

	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return false, nil
	}
	return expiry.After(now), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
