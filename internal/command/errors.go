package command

import "errors"

var (
	// ErrInvalidAction is returned for an action outside {open, close, stop}.
	ErrInvalidAction = errors.New("invalid action: must be 'open', 'close', or 'stop'")

	// ErrManualHold is returned when a schedule-sourced command arrives
	// while the device is under a manual hold.
	ErrManualHold = errors.New("schedule command refused: device is in manual mode")

	// ErrScheduleInactive is returned when a schedule-sourced command
	// arrives while the schedule is disabled or skipped for today.
	ErrScheduleInactive = errors.New("schedule command refused: schedule is not active today")
)
