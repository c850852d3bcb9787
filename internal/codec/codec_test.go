package codec

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	payload, err := EncodeRequest("label-1", []Node{
		{Kind: "move_absolute", Args: map[string]any{"speed": 100}},
	})
	if err != nil {
		t.Fatalf("EncodeRequest() error: %v", err)
	}

	var envelope Node
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if envelope.Kind != KindRPCRequest {
		t.Errorf("kind = %q, want rpc_request", envelope.Kind)
	}
	if envelope.Args["label"] != "label-1" {
		t.Errorf("label = %v, want label-1", envelope.Args["label"])
	}
	if len(envelope.Body) != 1 || envelope.Body[0].Kind != "move_absolute" {
		t.Errorf("body = %+v", envelope.Body)
	}
}

func TestEncodeRequestEmptyLabel(t *testing.T) {
	_, err := EncodeRequest("", nil)
	if !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("error = %v, want ErrEmptyLabel", err)
	}
}

func TestDecodeReplyOK(t *testing.T) {
	reply, err := DecodeReply([]byte(`{"kind":"rpc_ok","args":{"label":"abc-123"}}`))
	if err != nil {
		t.Fatalf("DecodeReply() error: %v", err)
	}
	if !reply.OK {
		t.Error("OK = false for rpc_ok")
	}
	if reply.Label != "abc-123" {
		t.Errorf("label = %q", reply.Label)
	}
}

func TestDecodeReplyError(t *testing.T) {
	raw := []byte(`{
		"kind": "rpc_error",
		"args": {"label": "abc-123"},
		"body": [
			{"kind": "explanation", "args": {"message": "firmware not responding"}},
			{"kind": "explanation", "args": {"message": "try rebooting"}}
		]
	}`)

	reply, err := DecodeReply(raw)
	if err != nil {
		t.Fatalf("DecodeReply() error: %v", err)
	}
	if reply.OK {
		t.Error("OK = true for rpc_error")
	}
	if len(reply.Explanations) != 2 || reply.Explanations[0] != "firmware not responding" {
		t.Errorf("explanations = %v", reply.Explanations)
	}
}

func TestDecodeReplyNonReplyKind(t *testing.T) {
	// The device mirrors client rpc_requests on the reply channel;
	// those are not replies and must be distinguishable from garbage.
	_, err := DecodeReply([]byte(`{"kind":"rpc_request","args":{"label":"x"}}`))
	if !errors.Is(err, ErrNotReply) {
		t.Errorf("error = %v, want ErrNotReply", err)
	}
}

func TestDecodeReplyMissingLabel(t *testing.T) {
	_, err := DecodeReply([]byte(`{"kind":"rpc_ok","args":{}}`))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestDecodeReplyMalformed(t *testing.T) {
	_, err := DecodeReply([]byte(`{not json`))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestDecodeStatus(t *testing.T) {
	tree, err := DecodeStatus([]byte(`{
		"location_data": {"position": {"x": 10.5, "y": 0, "z": -2}},
		"informational_settings": {"sync_status": "synced"}
	}`))
	if err != nil {
		t.Fatalf("DecodeStatus() error: %v", err)
	}

	if tree.LocationData.Position.X == nil || *tree.LocationData.Position.X != 10.5 {
		t.Errorf("position.x = %v", tree.LocationData.Position.X)
	}
	// Zero is a known value, distinct from absent.
	if tree.LocationData.Position.Y == nil || *tree.LocationData.Position.Y != 0 {
		t.Error("explicit zero decoded as unknown")
	}
	if tree.Pins != nil {
		t.Error("absent section decoded as non-nil")
	}
}

func TestDecodeLog(t *testing.T) {
	event, err := DecodeLog([]byte(`{
		"message": "Movement complete.",
		"type": "success",
		"verbosity": 1,
		"channels": ["toast"],
		"created_at": 1700000000
	}`))
	if err != nil {
		t.Fatalf("DecodeLog() error: %v", err)
	}
	if event.Message != "Movement complete." || event.Type != "success" {
		t.Errorf("event = %+v", event)
	}
}
