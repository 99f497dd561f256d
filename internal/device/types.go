package device

import "time"

// Mode is a shade's operating mode.
type Mode string

// Operating modes.
const (
	// ModeAuto lets the schedule drive the shade.
	ModeAuto Mode = "auto"

	// ModeManual holds the shade under user control, optionally until an
	// absolute expiry.
	ModeManual Mode = "manual"
)

// Valid reports whether the mode is a recognised value.
func (m Mode) Valid() bool {
	return m == ModeAuto || m == ModeManual
}

// Device represents a motorised shade unit.
type Device struct {
	ID           string     `json:"id"`
	SerialNumber string     `json:"serial_number"`
	OwnerID      *string    `json:"owner_id,omitempty"`
	Status       string     `json:"status"`
	Mode         Mode       `json:"mode,omitempty"`
	// ManualExpiresAt is the absolute end of a manual hold. Nil means
	// indefinite (manual) or not applicable (auto).
	ManualExpiresAt *time.Time `json:"manual_expires_at,omitempty"`
	// RegisteredAt is set on first claim and never overwritten.
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ModeRecord is the fallback mode entry in device_modes, maintained as a
// write-through copy of the device row's mode columns.
type ModeRecord struct {
	DeviceID        string     `json:"device_id"`
	Mode            Mode       `json:"mode"`
	ManualExpiresAt *time.Time `json:"manual_expires_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EffectiveMode is the resolved operating mode served to callers and
// consulted by command admission.
type EffectiveMode struct {
	Mode            Mode       `json:"mode"`
	ManualExpiresAt *time.Time `json:"manual_expires_at,omitempty"`
}
