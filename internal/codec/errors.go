package codec

import "errors"

// Domain-specific errors for envelope handling.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEncode is returned when a command cannot be serialized.
	ErrEncode = errors.New("codec: encode failed")

	// ErrDecode is returned when an inbound payload cannot be parsed.
	ErrDecode = errors.New("codec: decode failed")

	// ErrEmptyLabel is returned when encoding a request without a
	// correlation label.
	ErrEmptyLabel = errors.New("codec: correlation label cannot be empty")

	// ErrNotReply is returned by DecodeReply for well-formed messages
	// that are not rpc_ok/rpc_error envelopes.
	ErrNotReply = errors.New("codec: not a reply envelope")
)
