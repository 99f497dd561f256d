package device

import "errors"

var (
	// ErrDeviceNotFound is returned when no device matches the lookup.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrAlreadyClaimed is returned when claiming a device owned by a
	// different user.
	ErrAlreadyClaimed = errors.New("device already claimed by another user")

	// ErrInvalidMode is returned for a mode outside {auto, manual}.
	ErrInvalidMode = errors.New("invalid mode: must be 'auto' or 'manual'")

	// ErrInvalidSerial is returned for an empty or malformed serial number.
	ErrInvalidSerial = errors.New("invalid serial number")
)
