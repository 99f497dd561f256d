package settings

import "time"

// Section is one settings group, stored as a JSON document.
type Section map[string]any

// Settings is a user's full preference set.
type Settings struct {
	Profile             Section    `json:"profile"`
	Notifications       Section    `json:"notifications"`
	Automation          Section    `json:"automation"`
	Appearance          Section    `json:"appearance"`
	System              Section    `json:"system"`
	LastPasswordResetAt *time.Time `json:"last_password_reset_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Patch carries partial section updates. Nil sections are untouched.
// Profile is deliberately absent; it has its own write path.
type Patch struct {
	Notifications Section `json:"notifications,omitempty"`
	Automation    Section `json:"automation,omitempty"`
	Appearance    Section `json:"appearance,omitempty"`
	System        Section `json:"system,omitempty"`
}

// Defaults returns the settings a user starts with.
func Defaults() *Settings {
	return &Settings{
		Profile: Section{
			"name": "",
		},
		Notifications: Section{
			"deviceAlerts":          false,
			"scheduleNotifications": false,
			"automationUpdates":     false,
			"systemAnnouncements":   false,
		},
		Automation: Section{
			"openingPosition":     75,
			"sunlightSensitivity": "Medium",
		},
		Appearance: Section{
			"theme": "Light",
		},
		System: Section{
			"serialNumber": "",
			"zipCode":      "",
		},
	}
}

// merge returns base overlaid with the keys of overlay.
func merge(base, overlay Section) Section {
	out := make(Section, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
