package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device persistence.
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, id string) (*Device, error)
	GetBySerial(ctx context.Context, serial string) (*Device, error)
	GetByOwner(ctx context.Context, ownerID string) (*Device, error)
	Claim(ctx context.Context, serial, ownerID string) (*Device, error)
	SetMode(ctx context.Context, deviceID string, mode Mode, expiresAt *time.Time) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed device repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = "id, serial_number, owner_id, status, mode, manual_expires_at, registered_at, created_at, updated_at"

// Create inserts a provisioned device. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, device *Device) error {
	if device.ID == "" {
		device.ID = "dev-" + uuid.NewString()[:8]
	}
	if device.Status == "" {
		device.Status = "offline"
	}

	now := time.Now().UTC().Format(time.RFC3339)
	device.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	device.UpdatedAt = device.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, serial_number, owner_id, status, mode, manual_expires_at, registered_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		device.ID, device.SerialNumber, device.OwnerID, device.Status,
		nullMode(device.Mode), nullTime(device.ManualExpiresAt), nullTime(device.RegisteredAt),
		now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("serial %s already provisioned: %w", device.SerialNumber, err)
		}
		return fmt.Errorf("creating device: %w", err)
	}

	return nil
}

// GetByID retrieves a device by its unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	return r.getDevice(ctx, "SELECT "+deviceColumns+" FROM devices WHERE id = ?", id)
}

// GetBySerial retrieves a device by its serial number.
func (r *SQLiteRepository) GetBySerial(ctx context.Context, serial string) (*Device, error) {
	return r.getDevice(ctx, "SELECT "+deviceColumns+" FROM devices WHERE serial_number = ?", serial)
}

// GetByOwner retrieves the device claimed by a user. ErrDeviceNotFound
// means the user has not completed onboarding yet.
func (r *SQLiteRepository) GetByOwner(ctx context.Context, ownerID string) (*Device, error) {
	return r.getDevice(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE owner_id = ? ORDER BY registered_at ASC LIMIT 1", ownerID)
}

// Claim assigns a device to an owner by serial number, transactionally.
//
// Returns ErrDeviceNotFound for an unknown serial and ErrAlreadyClaimed
// when a different user owns it. Claiming your own device again succeeds
// without side effects; registered_at is set only if it was never set.
func (r *SQLiteRepository) Claim(ctx context.Context, serial, ownerID string) (*Device, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	device, err := scanDevice(tx.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE serial_number = ?", serial))
	if err != nil {
		return nil, err
	}

	if device.OwnerID != nil && *device.OwnerID != ownerID {
		return nil, ErrAlreadyClaimed
	}

	// Truncate to seconds so the in-memory value matches the stored
	// RFC3339 representation.
	now := time.Now().UTC().Truncate(time.Second)
	nowStr := now.Format(time.RFC3339)

	if device.RegisteredAt == nil {
		device.RegisteredAt = &now
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE devices SET owner_id = ?, registered_at = COALESCE(registered_at, ?), updated_at = ? WHERE id = ?`,
		ownerID, nowStr, nowStr, device.ID,
	); err != nil {
		return nil, fmt.Errorf("claiming device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	device.OwnerID = &ownerID
	device.UpdatedAt = now
	return device, nil
}

// SetMode writes a mode change to the device row and through to the
// device_modes fallback record in a single transaction.
func (r *SQLiteRepository) SetMode(ctx context.Context, deviceID string, mode Mode, expiresAt *time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning mode transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)

	result, err := tx.ExecContext(ctx,
		`UPDATE devices SET mode = ?, manual_expires_at = ?, updated_at = ? WHERE id = ?`,
		string(mode), nullTime(expiresAt), now, deviceID,
	)
	if err != nil {
		return fmt.Errorf("updating device mode: %w", err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO device_modes (device_id, mode, manual_expires_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(device_id) DO UPDATE SET mode = excluded.mode,
		     manual_expires_at = excluded.manual_expires_at,
		     updated_at = excluded.updated_at`,
		deviceID, string(mode), nullTime(expiresAt), now,
	); err != nil {
		return fmt.Errorf("writing through mode record: %w", err)
	}

	return tx.Commit()
}

// getDevice executes a query and scans a single device result.
func (r *SQLiteRepository) getDevice(ctx context.Context, query string, args ...any) (*Device, error) {
	return scanDevice(r.db.QueryRowContext(ctx, query, args...))
}

// rowScanner is satisfied by sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device from a row.
func scanDevice(s rowScanner) (*Device, error) {
	var d Device
	var ownerID, mode, manualExpiresAt, registeredAt sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&d.ID, &d.SerialNumber, &ownerID, &d.Status,
		&mode, &manualExpiresAt, &registeredAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}

	if ownerID.Valid {
		d.OwnerID = &ownerID.String
	}
	if mode.Valid {
		d.Mode = Mode(mode.String)
	}
	d.ManualExpiresAt = parseNullTime(manualExpiresAt)
	d.RegisteredAt = parseNullTime(registeredAt)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &d, nil
}

// Helper functions shared across the package's repositories.

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullMode(m Mode) sql.NullString {
	if m == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(m), Valid: true}
}
