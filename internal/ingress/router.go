package ingress

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wrenhall/botlink/internal/codec"
	"github.com/wrenhall/botlink/internal/command"
	"github.com/wrenhall/botlink/internal/metric"
	"github.com/wrenhall/botlink/internal/state"
)

// Logger defines the logging interface used by this package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StateSink receives decoded state payloads.
type StateSink interface {
	// Merge applies a partial delta.
	Merge(delta *state.Tree)

	// ReplaceAll installs a full snapshot, discarding prior state.
	ReplaceAll(tree *state.Tree)
}

// ReplySink receives decoded command replies.
type ReplySink interface {
	Resolve(id string, result *command.Result) bool
	Reject(id string, err error) bool
}

// Routes names the topics the router dispatches on.
type Routes struct {
	// Status carries full state snapshots.
	Status string

	// DeltaPrefix matches partial state updates; any topic under it is
	// treated as a delta regardless of the remainder of the path.
	DeltaPrefix string

	// Replies carries command acknowledgements. The device mirrors
	// client requests on the same topic; those are dropped silently.
	Replies string

	// Logs carries device log events.
	Logs string
}

// Router classifies inbound messages by topic, decodes them, and feeds
// the right sink. One malformed message never stops the stream: it is
// logged, counted, and dropped.
//
// Handle is idempotent with respect to the sinks it feeds — replaying a
// snapshot, a delta, or a reply leaves the system in the same state.
type Router struct {
	routes  Routes
	states  StateSink
	replies ReplySink

	mu    sync.RWMutex
	onLog func(codec.LogEvent)

	logger  Logger
	metrics *metric.Metrics
}

// NewRouter creates a router feeding the given sinks.
func NewRouter(routes Routes, states StateSink, replies ReplySink) *Router {
	return &Router{
		routes:  routes,
		states:  states,
		replies: replies,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the router.
func (r *Router) SetLogger(logger Logger) {
	r.logger = logger
}

// SetMetrics sets the metrics sink for the router.
func (r *Router) SetMetrics(m *metric.Metrics) {
	r.metrics = m
}

// SetOnLog registers the callback invoked for each decoded device log
// event. Pass nil to clear it.
func (r *Router) SetOnLog(fn func(codec.LogEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onLog = fn
}

// Handle routes one inbound message. The returned error reports what
// went wrong with this message only; the caller should log it and keep
// consuming.
func (r *Router) Handle(topic string, payload []byte) error {
	switch {
	case topic == r.routes.Status:
		return r.handleSnapshot(payload)
	case r.routes.DeltaPrefix != "" && strings.HasPrefix(topic, r.routes.DeltaPrefix):
		return r.handleDelta(payload)
	case topic == r.routes.Replies:
		return r.handleReply(payload)
	case topic == r.routes.Logs:
		return r.handleLog(payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnroutedTopic, topic)
	}
}

func (r *Router) handleSnapshot(payload []byte) error {
	r.metrics.IncReceived("status")

	tree, err := codec.DecodeStatus(payload)
	if err != nil {
		return r.malformed("status snapshot", err)
	}

	r.states.ReplaceAll(tree)
	r.metrics.IncBaseline()
	return nil
}

func (r *Router) handleDelta(payload []byte) error {
	r.metrics.IncReceived("delta")

	delta, err := codec.DecodeStatus(payload)
	if err != nil {
		return r.malformed("state delta", err)
	}

	r.states.Merge(delta)
	r.metrics.IncMerge()
	return nil
}

func (r *Router) handleReply(payload []byte) error {
	r.metrics.IncReceived("reply")

	reply, err := codec.DecodeReply(payload)
	if err != nil {
		// The broker mirrors our own requests on the reply topic.
		if errors.Is(err, codec.ErrNotReply) {
			return nil
		}
		return r.malformed("command reply", err)
	}

	if reply.OK {
		r.replies.Resolve(reply.Label, &command.Result{
			Label:      reply.Label,
			ReceivedAt: time.Now(),
		})
		return nil
	}

	detail := strings.Join(reply.Explanations, "; ")
	if detail == "" {
		detail = "no explanation provided"
	}
	r.replies.Reject(reply.Label, fmt.Errorf("%w: %s", command.ErrDevice, detail))
	return nil
}

func (r *Router) handleLog(payload []byte) error {
	r.metrics.IncReceived("log")

	event, err := codec.DecodeLog(payload)
	if err != nil {
		return r.malformed("device log", err)
	}

	r.mu.RLock()
	fn := r.onLog
	r.mu.RUnlock()
	if fn != nil {
		fn(*event)
	}
	return nil
}

// malformed counts and logs a decode failure and wraps it in
// ErrMalformed.
func (r *Router) malformed(class string, err error) error {
	r.metrics.IncMalformed()
	r.logger.Warn("dropping malformed message", "class", class, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrMalformed, class, err)
}
