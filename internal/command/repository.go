package command

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for command log persistence.
type Repository interface {
	Append(ctx context.Context, cmd *Command) error
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]Command, error)
}

// SQLiteRepository implements Repository using SQLite. The table is
// strictly append-only; no update or delete statements exist here.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed command log repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts a command row. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Append(ctx context.Context, cmd *Command) error {
	if cmd.ID == "" {
		cmd.ID = "cmd-" + uuid.NewString()[:8]
	}
	if cmd.Status == "" {
		cmd.Status = StatusPending
	}
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	var issuedBy any
	if cmd.IssuedBy != "" {
		issuedBy = cmd.IssuedBy
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_commands (id, device_id, action, mode, source, status, issued_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cmd.ID, cmd.DeviceID, cmd.Action, cmd.Mode, cmd.Source, cmd.Status,
		issuedBy, cmd.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending command: %w", err)
	}

	return nil
}

// ListByDevice returns a device's most recent commands, newest first.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]Command, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 { //nolint:mnd // max page size for the command log
		limit = 200
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, action, mode, source, status, issued_by, created_at
		 FROM device_commands WHERE device_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying commands: %w", err)
	}
	defer rows.Close()

	commands := []Command{}
	for rows.Next() {
		var c Command
		var issuedBy sql.NullString
		var createdAt string

		if err := rows.Scan(&c.ID, &c.DeviceID, &c.Action, &c.Mode, &c.Source,
			&c.Status, &issuedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command: %w", err)
		}

		if issuedBy.Valid {
			c.IssuedBy = issuedBy.String
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

		commands = append(commands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating commands: %w", err)
	}

	return commands, nil
}
