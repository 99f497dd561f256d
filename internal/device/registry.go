package device

import (
	"context"
	"strings"

	"github.com/shadesync/shadesync-core/internal/infrastructure/logging"
)

// ScheduleSeeder guarantees a device has a default schedule after
// onboarding. Implemented by the schedule store.
type ScheduleSeeder interface {
	EnsureDefault(ctx context.Context, deviceID string) error
}

// Registry implements device onboarding on top of the repository.
type Registry struct {
	devices   Repository
	schedules ScheduleSeeder
	log       *logging.Logger
}

// NewRegistry creates a device registry.
func NewRegistry(devices Repository, schedules ScheduleSeeder, log *logging.Logger) *Registry {
	return &Registry{
		devices:   devices,
		schedules: schedules,
		log:       log,
	}
}

// Claim binds a provisioned device to a user by serial number.
//
// Unknown serials return ErrDeviceNotFound; devices owned by someone
// else return ErrAlreadyClaimed. Re-claiming your own device is a no-op
// that returns the device. Every successful claim guarantees a default
// schedule exists for the device.
func (g *Registry) Claim(ctx context.Context, serial, userID string) (*Device, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, ErrInvalidSerial
	}

	d, err := g.devices.Claim(ctx, serial, userID)
	if err != nil {
		return nil, err
	}

	if err := g.schedules.EnsureDefault(ctx, d.ID); err != nil {
		return nil, err
	}

	g.log.Info("device claimed",
		"device_id", d.ID,
		"serial", d.SerialNumber,
		"user_id", userID,
	)

	return d, nil
}

// GetByOwner returns the user's claimed device. ErrDeviceNotFound means
// the user still needs to onboard.
func (g *Registry) GetByOwner(ctx context.Context, userID string) (*Device, error) {
	return g.devices.GetByOwner(ctx, userID)
}
