package command

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shadesync/shadesync-core/internal/audit"
	"github.com/shadesync/shadesync-core/internal/device"
	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "command-test-*.db")
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
		CREATE TABLE devices (
			id                TEXT PRIMARY KEY,
			serial_number     TEXT NOT NULL UNIQUE,
			owner_id          TEXT,
			status            TEXT NOT NULL DEFAULT 'offline',
			mode              TEXT,
			manual_expires_at TEXT,
			registered_at     TEXT,
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL
		);

		CREATE TABLE device_commands (
			id         TEXT PRIMARY KEY,
			device_id  TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
			action     TEXT NOT NULL,
			mode       TEXT NOT NULL,
			source     TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'pending',
			issued_by  TEXT,
			created_at TEXT NOT NULL
		);

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

		INSERT INTO devices (id, serial_number, created_at, updated_at)
		VALUES ('dev-cmd-1', 'SN-CMD-1', '2026-08-01T00:00:00Z', '2026-08-01T00:00:00Z');
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying command migration: %v", err)
	}

	return db
}

type stubResolver struct {
	effective *device.EffectiveMode
	err       error
}

func (r *stubResolver) Resolve(_ context.Context, _ *device.Device) (*device.EffectiveMode, error) {
	return r.effective, r.err
}

type stubGate struct {
	active bool
	err    error
}

func (g *stubGate) IsActiveToday(_ context.Context, _ string) (bool, error) {
	return g.active, g.err
}

type failingAuditor struct{}

func (failingAuditor) Create(_ context.Context, _ *audit.Entry) error {
	return errors.New("audit store unavailable")
}

func (failingAuditor) List(_ context.Context, _ audit.Filter) (*audit.ListResult, error) {
	return nil, errors.New("audit store unavailable")
}

type stubDispatcher struct {
	topics []string
	err    error
}

func (d *stubDispatcher) PublishJSON(topic string, _ []byte) error {
	d.topics = append(d.topics, topic)
	return d.err
}

type stubRecorder struct{ calls int }

func (r *stubRecorder) WriteCommandEvent(_, _, _, _ string) { r.calls++ }

type testFixture struct {
	svc        *Service
	db         *sql.DB
	resolver   *stubResolver
	gate       *stubGate
	dispatcher *stubDispatcher
	recorder   *stubRecorder
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	db := testDB(t)
	resolver := &stubResolver{effective: &device.EffectiveMode{Mode: device.ModeAuto}}
	gate := &stubGate{active: true}
	dispatcher := &stubDispatcher{}
	recorder := &stubRecorder{}

	svc := NewService(
		NewRepository(db),
		resolver,
		gate,
		audit.NewRepository(db),
		dispatcher,
		recorder,
		logging.Default(),
	)

	return &testFixture{svc: svc, db: db, resolver: resolver, gate: gate, dispatcher: dispatcher, recorder: recorder}
}

func testDevice() *device.Device {
	return &device.Device{ID: "dev-cmd-1", SerialNumber: "SN-CMD-1"}
}

func TestServiceIssueManualCommand(t *testing.T) {
	fx := newFixture(t)

	cmd, err := fx.svc.Issue(context.Background(), testDevice(), ActionOpen, SourceManual, "usr-alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if cmd.Status != StatusPending {
		t.Errorf("Status = %q, want pending", cmd.Status)
	}
	if cmd.Mode != string(device.ModeAuto) {
		t.Errorf("Mode = %q, want mode at admission (auto)", cmd.Mode)
	}
	if cmd.IssuedBy != "usr-alice" {
		t.Errorf("IssuedBy = %q, want usr-alice", cmd.IssuedBy)
	}

	recent, err := fx.svc.Recent(context.Background(), "dev-cmd-1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != cmd.ID {
		t.Errorf("log contents = %v, want the issued command", recent)
	}

	if len(fx.dispatcher.topics) != 1 || fx.dispatcher.topics[0] != "shadesync/command/SN-CMD-1" {
		t.Errorf("dispatch topics = %v", fx.dispatcher.topics)
	}
	if fx.recorder.calls != 1 {
		t.Errorf("recorder calls = %d, want 1", fx.recorder.calls)
	}
}

func TestServiceIssueInvalidAction(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Issue(context.Background(), testDevice(), "tilt", SourceManual, "usr-alice")
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("err = %v, want ErrInvalidAction", err)
	}
}

func TestServiceManualAcceptedRegardlessOfHoldAndSchedule(t *testing.T) {
	fx := newFixture(t)
	fx.resolver.effective = &device.EffectiveMode{Mode: device.ModeManual}
	fx.gate.active = false

	cmd, err := fx.svc.Issue(context.Background(), testDevice(), ActionClose, SourceManual, "usr-alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if cmd.Mode != string(device.ModeManual) {
		t.Errorf("Mode = %q, want manual recorded at admission", cmd.Mode)
	}
}

// The unified admission gate: each refusing condition alone rejects a
// schedule-sourced command, and both together still yield one conflict.
func TestServiceScheduleAdmissionGate(t *testing.T) {
	tests := []struct {
		name     string
		mode     device.Mode
		active   bool
		wantErr  error
		accepted bool
	}{
		{"active schedule, auto mode", device.ModeAuto, true, nil, true},
		{"manual hold alone", device.ModeManual, true, ErrManualHold, false},
		{"inactive schedule alone", device.ModeAuto, false, ErrScheduleInactive, false},
		{"manual hold and inactive schedule", device.ModeManual, false, ErrManualHold, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			fx.resolver.effective = &device.EffectiveMode{Mode: tt.mode}
			fx.gate.active = tt.active

			cmd, err := fx.svc.Issue(context.Background(), testDevice(), ActionOpen, SourceSchedule, "")
			if tt.accepted {
				if err != nil {
					t.Fatalf("Issue: %v", err)
				}
				if cmd.Source != SourceSchedule {
					t.Errorf("Source = %q", cmd.Source)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}

			// A refused command must not reach the log.
			recent, listErr := fx.svc.Recent(context.Background(), "dev-cmd-1", 10)
			if listErr != nil {
				t.Fatalf("Recent: %v", listErr)
			}
			if len(recent) != 0 {
				t.Errorf("refused command appended: %v", recent)
			}
		})
	}
}

func TestServiceAuditFailureSwallowed(t *testing.T) {
	db := testDB(t)
	svc := NewService(
		NewRepository(db),
		&stubResolver{effective: &device.EffectiveMode{Mode: device.ModeAuto}},
		&stubGate{active: true},
		failingAuditor{},
		nil,
		nil,
		logging.Default(),
	)

	cmd, err := svc.Issue(context.Background(), testDevice(), ActionStop, SourceManual, "usr-alice")
	if err != nil {
		t.Fatalf("Issue must succeed despite audit failure: %v", err)
	}

	recent, err := svc.Recent(context.Background(), "dev-cmd-1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != cmd.ID {
		t.Errorf("command not in log: %v", recent)
	}
}

func TestServiceDispatchFailureSwallowed(t *testing.T) {
	fx := newFixture(t)
	fx.dispatcher.err = errors.New("broker unreachable")

	if _, err := fx.svc.Issue(context.Background(), testDevice(), ActionOpen, SourceManual, "usr-alice"); err != nil {
		t.Fatalf("Issue must succeed despite dispatch failure: %v", err)
	}
}

func TestServiceDefaultsEmptySourceToManual(t *testing.T) {
	fx := newFixture(t)
	fx.resolver.effective = &device.EffectiveMode{Mode: device.ModeManual}

	cmd, err := fx.svc.Issue(context.Background(), testDevice(), ActionOpen, "", "usr-alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if cmd.Source != SourceManual {
		t.Errorf("Source = %q, want manual default", cmd.Source)
	}
}

func TestRepositoryListOrderAndLimit(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	for i, action := range []string{ActionOpen, ActionClose, ActionStop} {
		cmd := &Command{DeviceID: "dev-cmd-1", Action: action, Mode: "auto", Source: SourceManual}
		if err := repo.Append(context.Background(), cmd); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	got, err := repo.ListByDevice(context.Background(), "dev-cmd-1", 2)
	if err != nil {
		t.Fatalf("ListByDevice: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Action != ActionStop {
		t.Errorf("newest first: got %q, want stop", got[0].Action)
	}
}
