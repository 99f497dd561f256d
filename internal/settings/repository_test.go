package settings

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	f, err := os.CreateTemp("", "settings-test-*.db")
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
		CREATE TABLE user_settings (
			user_id                TEXT PRIMARY KEY,
			profile                TEXT NOT NULL DEFAULT '{}',
			notifications          TEXT NOT NULL DEFAULT '{}',
			automation             TEXT NOT NULL DEFAULT '{}',
			appearance             TEXT NOT NULL DEFAULT '{}',
			system                 TEXT NOT NULL DEFAULT '{}',
			last_password_reset_at TEXT,
			updated_at             TEXT NOT NULL
		);
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying settings migration: %v", err)
	}

	return NewRepository(db)
}

func TestRepositoryGetReturnsDefaults(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.Get(context.Background(), "usr-new")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Automation["openingPosition"] != 75 {
		t.Errorf("openingPosition = %v, want 75", got.Automation["openingPosition"])
	}
	if got.Automation["sunlightSensitivity"] != "Medium" {
		t.Errorf("sunlightSensitivity = %v, want Medium", got.Automation["sunlightSensitivity"])
	}
	if got.Appearance["theme"] != "Light" {
		t.Errorf("theme = %v, want Light", got.Appearance["theme"])
	}
	if got.Notifications["deviceAlerts"] != false {
		t.Errorf("deviceAlerts = %v, want false", got.Notifications["deviceAlerts"])
	}
	if got.LastPasswordResetAt != nil {
		t.Errorf("LastPasswordResetAt = %v, want nil", got.LastPasswordResetAt)
	}
}

func TestRepositorySaveMergesSections(t *testing.T) {
	repo := testRepo(t)

	saved, err := repo.Save(context.Background(), "usr-1", &Patch{
		Appearance: Section{"theme": "Dark"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Appearance["theme"] != "Dark" {
		t.Errorf("theme = %v, want Dark", saved.Appearance["theme"])
	}
	// Untouched sections keep their defaults.
	if saved.Automation["sunlightSensitivity"] != "Medium" {
		t.Errorf("sunlightSensitivity = %v, want Medium", saved.Automation["sunlightSensitivity"])
	}

	// A second partial save touches only its own keys.
	saved, err = repo.Save(context.Background(), "usr-1", &Patch{
		Notifications: Section{"deviceAlerts": true},
		System:        Section{"zipCode": "10001"},
	})
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if saved.Appearance["theme"] != "Dark" {
		t.Errorf("earlier save lost: theme = %v", saved.Appearance["theme"])
	}
	if saved.Notifications["deviceAlerts"] != true {
		t.Errorf("deviceAlerts = %v, want true", saved.Notifications["deviceAlerts"])
	}
	if saved.System["serialNumber"] != "" {
		t.Errorf("serialNumber default lost: %v", saved.System["serialNumber"])
	}

	// Round-trip through storage.
	got, err := repo.Get(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Appearance["theme"] != "Dark" || got.System["zipCode"] != "10001" {
		t.Errorf("stored settings = %+v", got)
	}
}

func TestRepositorySaveDoesNotTouchProfile(t *testing.T) {
	repo := testRepo(t)

	if _, err := repo.SaveProfile(context.Background(), "usr-1", Section{"name": "Alex"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	if _, err := repo.Save(context.Background(), "usr-1", &Patch{
		Appearance: Section{"theme": "Dark"},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	profile, err := repo.GetProfile(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile["name"] != "Alex" {
		t.Errorf("profile name = %v, want Alex", profile["name"])
	}
}

func TestRepositoryProfileRoundTrip(t *testing.T) {
	repo := testRepo(t)

	profile, err := repo.GetProfile(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile["name"] != "" {
		t.Errorf("default name = %v, want empty", profile["name"])
	}

	saved, err := repo.SaveProfile(context.Background(), "usr-1", Section{"name": "Sam"})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if saved["name"] != "Sam" {
		t.Errorf("saved name = %v, want Sam", saved["name"])
	}
}

func TestRepositoryMarkPasswordReset(t *testing.T) {
	repo := testRepo(t)

	before := time.Now().UTC().Add(-time.Second)
	stamp, err := repo.MarkPasswordReset(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("MarkPasswordReset: %v", err)
	}
	if stamp.Before(before) {
		t.Errorf("stamp %v is before test start", stamp)
	}

	got, err := repo.Get(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastPasswordResetAt == nil || !got.LastPasswordResetAt.Equal(stamp) {
		t.Errorf("LastPasswordResetAt = %v, want %v", got.LastPasswordResetAt, stamp)
	}

	// Other sections survive the stamp.
	if got.Automation["sunlightSensitivity"] != "Medium" {
		t.Errorf("defaults lost after stamp: %+v", got.Automation)
	}
}
