package device

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRepositoryCreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	d := seedTestDevice(t, db, "SN-1001")

	if d.ID == "" {
		t.Error("ID not generated")
	}
	if d.Status != "offline" {
		t.Errorf("Status = %q, want %q", d.Status, "offline")
	}

	got, err := repo.GetBySerial(context.Background(), "SN-1001")
	if err != nil {
		t.Fatalf("GetBySerial: %v", err)
	}
	if got.ID != d.ID {
		t.Errorf("GetBySerial ID = %s, want %s", got.ID, d.ID)
	}
	if got.OwnerID != nil {
		t.Errorf("unclaimed device has owner %v", *got.OwnerID)
	}
	if got.Mode != "" {
		t.Errorf("fresh device has mode %q, want unset", got.Mode)
	}

	if _, err := repo.GetBySerial(context.Background(), "SN-unknown"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("unknown serial err = %v, want ErrDeviceNotFound", err)
	}
}

func TestRepositoryClaim(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	seedTestOwner(t, db, "usr-alice")
	seedTestOwner(t, db, "usr-bob")
	seedTestDevice(t, db, "SN-2001")

	claimed, err := repo.Claim(context.Background(), "SN-2001", "usr-alice")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.OwnerID == nil || *claimed.OwnerID != "usr-alice" {
		t.Errorf("OwnerID = %v, want usr-alice", claimed.OwnerID)
	}
	if claimed.RegisteredAt == nil {
		t.Fatal("RegisteredAt not set on first claim")
	}
	firstRegistered := *claimed.RegisteredAt

	// Same-owner re-claim is idempotent and preserves registered_at.
	again, err := repo.Claim(context.Background(), "SN-2001", "usr-alice")
	if err != nil {
		t.Fatalf("re-claim: %v", err)
	}
	if again.RegisteredAt == nil || !again.RegisteredAt.Equal(firstRegistered) {
		t.Errorf("RegisteredAt changed on re-claim: %v -> %v", firstRegistered, again.RegisteredAt)
	}

	// Another user is refused.
	if _, err := repo.Claim(context.Background(), "SN-2001", "usr-bob"); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("foreign claim err = %v, want ErrAlreadyClaimed", err)
	}

	// Unknown serial.
	if _, err := repo.Claim(context.Background(), "SN-nope", "usr-alice"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("unknown serial err = %v, want ErrDeviceNotFound", err)
	}
}

func TestRepositoryClaimPreservesExistingRegisteredAt(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	seedTestOwner(t, db, "usr-alice")

	registered := timePtr(time.Now().Add(-30 * 24 * time.Hour))
	d := &Device{SerialNumber: "SN-3001", RegisteredAt: registered}
	if err := repo.Create(context.Background(), d); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claimed, err := repo.Claim(context.Background(), "SN-3001", "usr-alice")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.RegisteredAt == nil || !claimed.RegisteredAt.Equal(*registered) {
		t.Errorf("RegisteredAt = %v, want preserved %v", claimed.RegisteredAt, registered)
	}
}

func TestRepositoryGetByOwner(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	seedTestOwner(t, db, "usr-alice")

	if _, err := repo.GetByOwner(context.Background(), "usr-alice"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("pre-claim err = %v, want ErrDeviceNotFound", err)
	}

	seedTestDevice(t, db, "SN-4001")
	if _, err := repo.Claim(context.Background(), "SN-4001", "usr-alice"); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	got, err := repo.GetByOwner(context.Background(), "usr-alice")
	if err != nil {
		t.Fatalf("GetByOwner: %v", err)
	}
	if got.SerialNumber != "SN-4001" {
		t.Errorf("SerialNumber = %q, want SN-4001", got.SerialNumber)
	}
}

func TestRepositorySetModeWritesBothRepresentations(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	modes := NewModeRepository(db)

	d := seedTestDevice(t, db, "SN-5001")

	until := timePtr(time.Now().Add(2 * time.Hour))
	if err := repo.SetMode(context.Background(), d.ID, ModeManual, until); err != nil {
		t.Fatalf("SetMode: %v", err)
	}

	got, err := repo.GetByID(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Mode != ModeManual {
		t.Errorf("device mode = %q, want manual", got.Mode)
	}
	if got.ManualExpiresAt == nil || !got.ManualExpiresAt.Equal(*until) {
		t.Errorf("device expiry = %v, want %v", got.ManualExpiresAt, until)
	}

	record, err := modes.Get(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("modes.Get: %v", err)
	}
	if record == nil {
		t.Fatal("write-through record missing")
	}
	if record.Mode != ModeManual || record.ManualExpiresAt == nil || !record.ManualExpiresAt.Equal(*until) {
		t.Errorf("record = %+v, want manual until %v", record, until)
	}

	// Switching back to auto clears both.
	if err := repo.SetMode(context.Background(), d.ID, ModeAuto, nil); err != nil {
		t.Fatalf("SetMode auto: %v", err)
	}
	got, _ = repo.GetByID(context.Background(), d.ID) //nolint:errcheck // verified above
	record, _ = modes.Get(context.Background(), d.ID) //nolint:errcheck // verified above
	if got.Mode != ModeAuto || got.ManualExpiresAt != nil {
		t.Errorf("device after auto: mode=%q expiry=%v", got.Mode, got.ManualExpiresAt)
	}
	if record.Mode != ModeAuto || record.ManualExpiresAt != nil {
		t.Errorf("record after auto: %+v", record)
	}
}

func TestRepositorySetModeUnknownDevice(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)

	err := repo.SetMode(context.Background(), "dev-missing", ModeAuto, nil)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestModeRepositoryGetAbsent(t *testing.T) {
	db := testDB(t)
	modes := NewModeRepository(db)

	record, err := modes.Get(context.Background(), "dev-none")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record != nil {
		t.Errorf("record = %+v, want nil for absent", record)
	}
}
