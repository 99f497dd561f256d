package command

import "time"

// Actions a shade understands.
const (
	ActionOpen  = "open"
	ActionClose = "close"
	ActionStop  = "stop"
)

// Command sources.
const (
	SourceManual   = "manual"
	SourceSchedule = "schedule"
)

// StatusPending is the only status the core writes. Completion is the
// dispatch layer's business.
const StatusPending = "pending"

// Command is one row of the append-only command log.
type Command struct {
	ID       string `json:"id"`
	DeviceID string `json:"device_id"`
	Action   string `json:"action"`
	// Mode records the device's effective mode at admission time.
	Mode      string    `json:"mode"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	IssuedBy  string    `json:"issued_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// validAction reports whether an action is one a shade understands.
func validAction(action string) bool {
	return action == ActionOpen || action == ActionClose || action == ActionStop
}
