package mqtt

import "fmt"

// topicPrefix is the base for all device topics, per the FarmBot-compatible
// broker scheme: bot/{device_id}/{channel}.
const topicPrefix = "bot"

// Topics provides builders for the per-device MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{Device: "device_42"}
//	topics.FromClients() // "bot/device_42/from_clients"
type Topics struct {
	// Device is the device identifier (broker username).
	Device string
}

// FromClients returns the topic clients publish RPC requests on.
//
// Example: bot/device_42/from_clients
func (t Topics) FromClients() string {
	return fmt.Sprintf("%s/%s/from_clients", topicPrefix, t.Device)
}

// FromDevice returns the topic the device publishes RPC replies on.
//
// Example: bot/device_42/from_device
func (t Topics) FromDevice() string {
	return fmt.Sprintf("%s/%s/from_device", topicPrefix, t.Device)
}

// Status returns the topic carrying full state snapshots.
// The device publishes these retained, so a fresh subscriber receives
// the last known snapshot immediately.
//
// Example: bot/device_42/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", topicPrefix, t.Device)
}

// StatusDeltas returns the wildcard subscription for partial state deltas.
//
// Example: bot/device_42/status_v8/#
func (t Topics) StatusDeltas() string {
	return fmt.Sprintf("%s/%s/status_v8/#", topicPrefix, t.Device)
}

// StatusDeltaPrefix returns the prefix shared by all delta topics,
// used for inbound classification.
//
// Example: bot/device_42/status_v8/
func (t Topics) StatusDeltaPrefix() string {
	return fmt.Sprintf("%s/%s/status_v8/", topicPrefix, t.Device)
}

// Logs returns the topic carrying device log events.
//
// Example: bot/device_42/logs
func (t Topics) Logs() string {
	return fmt.Sprintf("%s/%s/logs", topicPrefix, t.Device)
}
