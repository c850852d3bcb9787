package telemetry

import "errors"

// Telemetry error taxonomy. Use errors.Is() to check for these errors
// in calling code.
var (
	// ErrNotConnected indicates the writer is not connected to InfluxDB.
	ErrNotConnected = errors.New("telemetry: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("telemetry: connection failed")

	// ErrDisabled indicates telemetry export is disabled in config.
	ErrDisabled = errors.New("telemetry: disabled in configuration")
)
