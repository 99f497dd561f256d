package device

import (
	"context"
	"time"

	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
)

// Resolver reconciles a device's two mode representations and answers
// "what mode is this shade effectively in right now".
type Resolver struct {
	devices Repository
	modes   ModeRepository
	log     *logging.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewResolver creates a mode resolver.
func NewResolver(devices Repository, modes ModeRepository, log *logging.Logger) *Resolver {
	return &Resolver{
		devices: devices,
		modes:   modes,
		log:     log,
		now:     time.Now,
	}
}

// Resolve returns the effective operating mode for a device.
//
// The device row's columns are authoritative when set and are written
// through to the fallback record; when the row carries no mode the
// fallback record is consulted. A manual hold whose expiry has passed
// degrades to auto, and the degradation is persisted so subsequent
// reads see the same answer without re-deciding.
func (r *Resolver) Resolve(ctx context.Context, d *Device) (*EffectiveMode, error) {
	record, err := r.modes.Get(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	mode := d.Mode
	expiry := d.ManualExpiresAt

	switch {
	case mode != "":
		// Primary set: heal a missing or divergent fallback record.
		if record == nil || record.Mode != mode || !timesEqual(record.ManualExpiresAt, expiry) {
			if err := r.modes.Upsert(ctx, d.ID, mode, expiry); err != nil {
				return nil, err
			}
		}
	case record != nil:
		mode = record.Mode
		expiry = record.ManualExpiresAt
	default:
		mode = ModeAuto
	}

	// Primary expiry wins; otherwise a fallback expiry still bounds the hold.
	if expiry == nil && record != nil {
		expiry = record.ManualExpiresAt
	}

	if mode == ModeManual && expiry != nil && !expiry.After(r.now()) {
		if err := r.persistDegradation(ctx, d); err != nil {
			return nil, err
		}
		r.log.Info("manual hold expired, degraded to auto", "device_id", d.ID)
		return &EffectiveMode{Mode: ModeAuto}, nil
	}

	if mode == ModeManual {
		return &EffectiveMode{Mode: ModeManual, ManualExpiresAt: expiry}, nil
	}

	return &EffectiveMode{Mode: ModeAuto}, nil
}

// persistDegradation writes mode=auto with no expiry to both
// representations. Safe to repeat; the write is the same every time.
func (r *Resolver) persistDegradation(ctx context.Context, d *Device) error {
	if err := r.devices.SetMode(ctx, d.ID, ModeAuto, nil); err != nil {
		return err
	}
	d.Mode = ModeAuto
	d.ManualExpiresAt = nil
	return nil
}

// SetMode applies an explicit mode change for a device.
//
// Manual mode may carry an absolute expiry; omitting it holds manual
// indefinitely. Switching to auto always clears the expiry. The change
// lands on the device row and the fallback record in one transaction.
func (r *Resolver) SetMode(ctx context.Context, deviceID string, mode Mode, until *time.Time) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}

	expiry := until
	if mode == ModeAuto {
		expiry = nil
	}

	if err := r.devices.SetMode(ctx, deviceID, mode, expiry); err != nil {
		return err
	}

	r.log.Info("device mode set",
		"device_id", deviceID,
		"mode", string(mode),
		"has_expiry", expiry != nil,
	)

	return nil
}

// timesEqual compares two optional timestamps.
func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
