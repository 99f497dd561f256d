package device

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the device schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "device-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			display_name  TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);

		CREATE TABLE devices (
			id                TEXT PRIMARY KEY,
			serial_number     TEXT NOT NULL UNIQUE,
			owner_id          TEXT REFERENCES users(id) ON DELETE SET NULL,
			status            TEXT NOT NULL DEFAULT 'offline',
			mode              TEXT,
			manual_expires_at TEXT,
			registered_at     TEXT,
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL
		);

		CREATE TABLE device_modes (
			device_id         TEXT PRIMARY KEY REFERENCES devices(id) ON DELETE CASCADE,
			mode              TEXT NOT NULL DEFAULT 'auto',
			manual_expires_at TEXT,
			updated_at        TEXT NOT NULL
		);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying device migration: %v", err)
	}

	return db
}

// seedTestOwner inserts a user row so owner_id foreign keys resolve.
func seedTestOwner(t *testing.T, db *sql.DB, userID string) {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, 'x', ?, ?)`,
		userID, userID+"@example.com", now, now,
	)
	if err != nil {
		t.Fatalf("seeding test owner %s: %v", userID, err)
	}
}

// seedTestDevice provisions an unclaimed device with the given serial.
func seedTestDevice(t *testing.T, db *sql.DB, serial string) *Device {
	t.Helper()

	repo := NewRepository(db)
	d := &Device{SerialNumber: serial}
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("provisioning test device %s: %v", serial, err)
	}
	return d
}

// timePtr returns a pointer to t, truncated to second precision to match
// RFC3339 round-tripping.
func timePtr(t time.Time) *time.Time {
	tt := t.UTC().Truncate(time.Second)
	return &tt
}
