package schedule

import "errors"

var (
	// ErrScheduleNotFound is returned by state changes on a device with
	// no schedule row.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrInvalidScope is returned for a SetState scope outside
	// {today, all, enable}.
	ErrInvalidScope = errors.New("invalid scope: must be 'today', 'all', or 'enable'")

	// ErrInvalidAction is returned for an entry action outside {open, close}.
	ErrInvalidAction = errors.New("invalid action: must be 'open' or 'close'")

	// ErrInvalidStartTime is returned for a start time not in HH:MM form.
	ErrInvalidStartTime = errors.New("invalid start time: must be HH:MM")
)
