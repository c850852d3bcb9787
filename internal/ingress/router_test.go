package ingress

import (
	"errors"
	"sync"
	"testing"

	"github.com/wrenhall/botlink/internal/codec"
	"github.com/wrenhall/botlink/internal/command"
	"github.com/wrenhall/botlink/internal/state"
)

type fakeStateSink struct {
	mu        sync.Mutex
	merges    []*state.Tree
	snapshots []*state.Tree
}

func (s *fakeStateSink) Merge(delta *state.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merges = append(s.merges, delta)
}

func (s *fakeStateSink) ReplaceAll(tree *state.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, tree)
}

type replyRecord struct {
	label string
	err   error
}

type fakeReplySink struct {
	mu      sync.Mutex
	replies []replyRecord
}

func (s *fakeReplySink) Resolve(id string, _ *command.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replyRecord{label: id})
	return true
}

func (s *fakeReplySink) Reject(id string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replyRecord{label: id, err: err})
	return true
}

func testRoutes() Routes {
	return Routes{
		Status:      "bot/device_1/status",
		DeltaPrefix: "bot/device_1/status_v8/",
		Replies:     "bot/device_1/from_device",
		Logs:        "bot/device_1/logs",
	}
}

func TestHandleSnapshot(t *testing.T) {
	states := &fakeStateSink{}
	r := NewRouter(testRoutes(), states, &fakeReplySink{})

	payload := []byte(`{"informational_settings":{"sync_status":"synced"}}`)
	if err := r.Handle("bot/device_1/status", payload); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(states.snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(states.snapshots))
	}
	if len(states.merges) != 0 {
		t.Errorf("snapshot routed to Merge")
	}
	got := states.snapshots[0].InformationalSettings
	if got == nil || got.SyncStatus == nil || *got.SyncStatus != "synced" {
		t.Errorf("snapshot not decoded: %+v", got)
	}
}

func TestHandleDelta(t *testing.T) {
	states := &fakeStateSink{}
	r := NewRouter(testRoutes(), states, &fakeReplySink{})

	payload := []byte(`{"location_data":{"position":{"x":12.5}}}`)
	if err := r.Handle("bot/device_1/status_v8/location_data/position/x", payload); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(states.merges) != 1 {
		t.Fatalf("got %d merges, want 1", len(states.merges))
	}
	if len(states.snapshots) != 0 {
		t.Errorf("delta routed to ReplaceAll")
	}
}

func TestHandleReplyOK(t *testing.T) {
	replies := &fakeReplySink{}
	r := NewRouter(testRoutes(), &fakeStateSink{}, replies)

	payload := []byte(`{"kind":"rpc_ok","args":{"label":"abc"}}`)
	if err := r.Handle("bot/device_1/from_device", payload); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(replies.replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies.replies))
	}
	if replies.replies[0].label != "abc" || replies.replies[0].err != nil {
		t.Errorf("reply = %+v, want resolved abc", replies.replies[0])
	}
}

func TestHandleReplyError(t *testing.T) {
	replies := &fakeReplySink{}
	r := NewRouter(testRoutes(), &fakeStateSink{}, replies)

	payload := []byte(`{"kind":"rpc_error","args":{"label":"abc"},"body":[{"kind":"explanation","args":{"message":"emergency stop"}}]}`)
	if err := r.Handle("bot/device_1/from_device", payload); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(replies.replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies.replies))
	}
	got := replies.replies[0]
	if !errors.Is(got.err, command.ErrDevice) {
		t.Errorf("reply error = %v, want ErrDevice", got.err)
	}
	if got.err == nil || got.err.Error() == "" {
		t.Error("device explanation not attached")
	}
}

func TestHandleMirroredRequestDropped(t *testing.T) {
	replies := &fakeReplySink{}
	r := NewRouter(testRoutes(), &fakeStateSink{}, replies)

	// The broker echoes our own rpc_request on the reply topic.
	payload := []byte(`{"kind":"rpc_request","args":{"label":"abc"},"body":[{"kind":"sync"}]}`)
	if err := r.Handle("bot/device_1/from_device", payload); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if len(replies.replies) != 0 {
		t.Errorf("mirrored request reached the reply sink: %+v", replies.replies)
	}
}

func TestHandleLog(t *testing.T) {
	r := NewRouter(testRoutes(), &fakeStateSink{}, &fakeReplySink{})

	var events []codec.LogEvent
	r.SetOnLog(func(e codec.LogEvent) { events = append(events, e) })

	payload := []byte(`{"message":"movement complete","type":"success","verbosity":1}`)
	if err := r.Handle("bot/device_1/logs", payload); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("got %d log events, want 1", len(events))
	}
	if events[0].Message != "movement complete" || events[0].Type != "success" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestHandleLogNoCallback(t *testing.T) {
	r := NewRouter(testRoutes(), &fakeStateSink{}, &fakeReplySink{})

	// No callback registered; must not panic.
	if err := r.Handle("bot/device_1/logs", []byte(`{"message":"hi"}`)); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
}

func TestHandleMalformed(t *testing.T) {
	tests := []struct {
		name  string
		topic string
	}{
		{"snapshot", "bot/device_1/status"},
		{"delta", "bot/device_1/status_v8/pins/13"},
		{"reply", "bot/device_1/from_device"},
		{"log", "bot/device_1/logs"},
	}

	states := &fakeStateSink{}
	replies := &fakeReplySink{}
	r := NewRouter(testRoutes(), states, replies)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Handle(tt.topic, []byte(`{not json`))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Handle() error = %v, want ErrMalformed", err)
			}
		})
	}

	if len(states.merges)+len(states.snapshots)+len(replies.replies) != 0 {
		t.Error("malformed payloads reached a sink")
	}
}

func TestHandleUnroutedTopic(t *testing.T) {
	r := NewRouter(testRoutes(), &fakeStateSink{}, &fakeReplySink{})

	err := r.Handle("bot/device_1/sync", []byte(`{}`))
	if !errors.Is(err, ErrUnroutedTopic) {
		t.Errorf("Handle() error = %v, want ErrUnroutedTopic", err)
	}
}

func TestHandleReplayIdempotent(t *testing.T) {
	states := &fakeStateSink{}
	r := NewRouter(testRoutes(), states, &fakeReplySink{})

	payload := []byte(`{"pins":{"13":{"value":1,"mode":0}}}`)
	for i := 0; i < 2; i++ {
		if err := r.Handle("bot/device_1/status_v8/pins/13", payload); err != nil {
			t.Fatalf("Handle() error: %v", err)
		}
	}
	if len(states.merges) != 2 {
		t.Fatalf("got %d merges, want 2", len(states.merges))
	}
}
