package schedule

import "time"

// Actions a schedule entry can perform.
const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// Scopes accepted by SetState.
const (
	ScopeToday  = "today"
	ScopeAll    = "all"
	ScopeEnable = "enable"
)

// Entry is one timed action on one day of the week.
type Entry struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	Timezone  string `json:"timezone"`
	Action    string `json:"action"`
	Enabled   bool   `json:"enabled"`
}

// EntryInput is the caller-supplied shape for saving an entry.
type EntryInput struct {
	StartTime string `json:"start_time"`
	Action    string `json:"action"`
	Enabled   bool   `json:"enabled"`
}

// WeeklySchedule is a device's full program grouped by day code.
type WeeklySchedule struct {
	DeviceID  string             `json:"device_id"`
	Enabled   bool               `json:"enabled"`
	ByDay     map[string][]Entry `json:"by_day"`
	SkipToday bool               `json:"skip_today"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// dayCodes maps short day codes to the stored day names, in week order.
var dayCodes = []struct {
	code string
	name string
}{
	{"M", "Mon"},
	{"T", "Tue"},
	{"W", "Wed"},
	{"Th", "Thu"},
	{"F", "Fri"},
	{"Sa", "Sat"},
	{"Su", "Sun"},
}

// codeToName resolves a short day code. ok is false for unknown codes,
// which callers drop silently.
func codeToName(code string) (string, bool) {
	for _, d := range dayCodes {
		if d.code == code {
			return d.name, true
		}
	}
	return "", false
}

// nameToCode resolves a stored day name back to its short code.
func nameToCode(name string) (string, bool) {
	for _, d := range dayCodes {
		if d.name == name {
			return d.code, true
		}
	}
	return "", false
}

// validAction reports whether an action is schedulable.
func validAction(action string) bool {
	return action == ActionOpen || action == ActionClose
}
