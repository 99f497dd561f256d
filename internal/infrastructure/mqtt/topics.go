package mqtt

import "fmt"

// Topic prefixes for the ShadeSync MQTT namespace.
//
// Command topics use the scheme: shadesync/command/{serial_number}
// A future shade controller subscribes to its own serial's command topic.
const (
	// TopicPrefix is the base for all ShadeSync topics.
	TopicPrefix = "shadesync"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "shadesync/system"
)

// Topics provides builders for ShadeSync MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// DeviceCommand returns the dispatch topic for a device's commands.
//
// Example: shadesync/command/SSN-001234
func (Topics) DeviceCommand(serialNumber string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, serialNumber)
}

// DeviceState returns the topic a controller reports shade state on.
//
// Example: shadesync/state/SSN-001234
func (Topics) DeviceState(serialNumber string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, serialNumber)
}

// SystemStatus returns the topic for core online/offline status.
//
// Example: shadesync/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
