package codec

import (
	"encoding/json"
	"fmt"

	"github.com/wrenhall/botlink/internal/state"
)

// Node is one node of the device's command language. Commands, replies,
// and their nested arguments all share this shape.
type Node struct {
	Kind string         `json:"kind"`
	Args map[string]any `json:"args,omitempty"`
	Body []Node         `json:"body,omitempty"`
}

// Well-known node kinds used by the engine itself.
const (
	KindRPCRequest = "rpc_request"
	KindRPCOK      = "rpc_ok"
	KindRPCError   = "rpc_error"
	KindReadStatus = "read_status"
)

// Reply is a decoded command reply. OK distinguishes rpc_ok from
// rpc_error; Explanations carries the device-provided failure detail.
type Reply struct {
	Label        string
	OK           bool
	Explanations []string
}

// LogEvent is a decoded device log message.
type LogEvent struct {
	Message   string   `json:"message"`
	Type      string   `json:"type,omitempty"`
	Verbosity int      `json:"verbosity,omitempty"`
	Channels  []string `json:"channels,omitempty"`
	CreatedAt int64    `json:"created_at,omitempty"`
}

// EncodeRequest wraps command nodes in an rpc_request envelope carrying
// the correlation label the device echoes back in its reply.
//
// Parameters:
//   - label: Correlation id, echoed in the eventual rpc_ok/rpc_error
//   - body: Command nodes to execute
//
// Returns:
//   - []byte: Serialized envelope ready for publication
//   - error: If the label is empty or the body cannot be serialized
func EncodeRequest(label string, body []Node) ([]byte, error) {
	if label == "" {
		return nil, ErrEmptyLabel
	}

	envelope := Node{
		Kind: KindRPCRequest,
		Args: map[string]any{"label": label},
		Body: body,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return data, nil
}

// DecodeReply parses an rpc_ok / rpc_error envelope from the reply
// channel. Messages on that channel that are not replies (the device
// also mirrors client requests there) yield ErrNotReply so the caller
// can drop them without treating them as malformed.
func DecodeReply(payload []byte) (*Reply, error) {
	var envelope Node
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	switch envelope.Kind {
	case KindRPCOK, KindRPCError:
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrNotReply, envelope.Kind)
	}

	label, _ := envelope.Args["label"].(string)
	if label == "" {
		return nil, fmt.Errorf("%w: reply without label", ErrDecode)
	}

	reply := &Reply{
		Label: label,
		OK:    envelope.Kind == KindRPCOK,
	}

	for _, node := range envelope.Body {
		if node.Kind != "explanation" {
			continue
		}
		if message, ok := node.Args["message"].(string); ok {
			reply.Explanations = append(reply.Explanations, message)
		}
	}

	return reply, nil
}

// DecodeStatus parses a state tree from a full snapshot or a partial
// delta payload. Absent fields decode to nil, which is exactly what the
// merge rules need.
func DecodeStatus(payload []byte) (*state.Tree, error) {
	var tree state.Tree
	if err := json.Unmarshal(payload, &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &tree, nil
}

// DecodeLog parses a device log event.
func DecodeLog(payload []byte) (*LogEvent, error) {
	var event LogEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &event, nil
}
