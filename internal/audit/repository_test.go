package audit

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "audit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE audit_logs (
			id          TEXT PRIMARY KEY,
			action      TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id   TEXT,
			user_id     TEXT,
			source      TEXT NOT NULL,
			details     TEXT,
			created_at  TEXT NOT NULL
		);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying audit migration: %v", err)
	}

	return db
}

func TestRepositoryCreateAndList(t *testing.T) {
	repo := NewRepository(testDB(t))

	entry := &Entry{
		Action:     "command",
		EntityType: "device",
		EntityID:   "dev-1",
		UserID:     "usr-alice",
		Source:     "manual",
		Details:    map[string]any{"action": "open", "mode": "manual"},
	}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.ID == "" {
		t.Error("ID not generated")
	}

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 || len(result.Entries) != 1 {
		t.Fatalf("Total = %d, Entries = %d, want 1/1", result.Total, len(result.Entries))
	}

	got := result.Entries[0]
	if got.Action != "command" || got.EntityID != "dev-1" || got.UserID != "usr-alice" {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.Details["action"] != "open" {
		t.Errorf("details not round-tripped: %v", got.Details)
	}
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(testDB(t))

	seed := []Entry{
		{Action: "claim", EntityType: "device", EntityID: "dev-1", UserID: "usr-alice", Source: "api"},
		{Action: "command", EntityType: "device", EntityID: "dev-1", UserID: "usr-alice", Source: "manual"},
		{Action: "command", EntityType: "device", EntityID: "dev-2", UserID: "usr-bob", Source: "schedule"},
	}
	for i := range seed {
		if err := repo.Create(context.Background(), &seed[i]); err != nil {
			t.Fatalf("seeding entry %d: %v", i, err)
		}
	}

	tests := []struct {
		name      string
		filter    Filter
		wantTotal int
	}{
		{"by action", Filter{Action: "command"}, 2},
		{"by entity", Filter{EntityID: "dev-1"}, 2},
		{"by user", Filter{UserID: "usr-bob"}, 1},
		{"combined", Filter{Action: "command", EntityID: "dev-1"}, 1},
		{"no match", Filter{Action: "delete"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if result.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", result.Total, tt.wantTotal)
			}
		})
	}
}

func TestRepositoryListPagination(t *testing.T) {
	repo := NewRepository(testDB(t))

	for i := 0; i < 5; i++ {
		if err := repo.Create(context.Background(), &Entry{
			Action: "command", EntityType: "device", Source: "manual",
		}); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	result, err := repo.List(context.Background(), Filter{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Errorf("page size = %d, want 2", len(result.Entries))
	}

	result, err = repo.List(context.Background(), Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Errorf("last page size = %d, want 1", len(result.Entries))
	}
}
