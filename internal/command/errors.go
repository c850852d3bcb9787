package command

import "errors"

// Command error taxonomy. Use errors.Is() to check for these errors in
// calling code.
var (
	// ErrTransport is returned when the transport could not publish
	// the command. Surfaced immediately; never retried by the engine.
	ErrTransport = errors.New("command: transport publish failed")

	// ErrTimeout is returned when no reply arrived within the
	// configured deadline. The pending entry is cleaned up.
	ErrTimeout = errors.New("command: no reply before deadline")

	// ErrDevice is returned when the device explicitly reported
	// failure for a command, with device-provided detail attached.
	ErrDevice = errors.New("command: device reported failure")

	// ErrConnectionLost is returned to every outstanding command when
	// the transport connection drops; delivery cannot be assumed.
	ErrConnectionLost = errors.New("command: connection lost while command outstanding")

	// ErrDuplicateLabel is returned when registering a correlation id
	// that is already outstanding.
	ErrDuplicateLabel = errors.New("command: correlation id already registered")

	// ErrEmptyCommand is returned when dispatching a command without a
	// kind.
	ErrEmptyCommand = errors.New("command: command kind cannot be empty")
)
