package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ModeRepository defines the interface for the device_modes fallback store.
type ModeRepository interface {
	// Get returns the mode record for a device, or nil when absent.
	// Absence is a normal resolution input, not an error.
	Get(ctx context.Context, deviceID string) (*ModeRecord, error)
	Upsert(ctx context.Context, deviceID string, mode Mode, expiresAt *time.Time) error
}

// SQLiteModeRepository implements ModeRepository using SQLite.
type SQLiteModeRepository struct {
	db *sql.DB
}

// NewModeRepository creates a new SQLite-backed mode record repository.
func NewModeRepository(db *sql.DB) *SQLiteModeRepository {
	return &SQLiteModeRepository{db: db}
}

// Get returns the fallback mode record for a device, or nil when no
// record exists.
func (r *SQLiteModeRepository) Get(ctx context.Context, deviceID string) (*ModeRecord, error) {
	var rec ModeRecord
	var manualExpiresAt sql.NullString
	var updatedAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT device_id, mode, manual_expires_at, updated_at FROM device_modes WHERE device_id = ?",
		deviceID,
	).Scan(&rec.DeviceID, &rec.Mode, &manualExpiresAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning mode record: %w", err)
	}

	rec.ManualExpiresAt = parseNullTime(manualExpiresAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &rec, nil
}

// Upsert creates or replaces the fallback mode record for a device.
func (r *SQLiteModeRepository) Upsert(ctx context.Context, deviceID string, mode Mode, expiresAt *time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_modes (device_id, mode, manual_expires_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(device_id) DO UPDATE SET mode = excluded.mode,
		     manual_expires_at = excluded.manual_expires_at,
		     updated_at = excluded.updated_at`,
		deviceID, string(mode), nullTime(expiresAt), now,
	)
	if err != nil {
		return fmt.Errorf("upserting mode record: %w", err)
	}
	return nil
}
