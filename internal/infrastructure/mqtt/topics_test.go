package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device command", topics.DeviceCommand("SSN-001234"), "shadesync/command/SSN-001234"},
		{"device state", topics.DeviceState("SSN-001234"), "shadesync/state/SSN-001234"},
		{"system status", topics.SystemStatus(), "shadesync/system/status"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s topic = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
