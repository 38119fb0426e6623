package mqtt

import "fmt"

// TopicPrefix is the base for all Configurizer topics.
const TopicPrefix = "configurizer"

// Topics provides builders for Configurizer MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SettingsApplied returns the topic announcing an accepted settings batch
// for a machine. Published retained so new subscribers immediately see
// the latest applied settings.
//
// Example: configurizer/machines/molder-1/settings/applied
func (Topics) SettingsApplied(machine string) string {
	return fmt.Sprintf("%s/machines/%s/settings/applied", TopicPrefix, machine)
}

// SystemStatus returns the topic for service online/offline status.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}
