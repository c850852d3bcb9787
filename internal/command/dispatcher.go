package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wrenhall/botlink/internal/codec"
	"github.com/wrenhall/botlink/internal/metric"
)

// Publisher is the transport surface the dispatcher needs: a single
// fire-and-forget publish to a fixed topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// SendOptions adjust a single dispatch.
type SendOptions struct {
	// Label overrides the generated correlation id. Leave empty to let
	// the dispatcher assign a fresh UUID.
	Label string

	// Timeout overrides the dispatcher's default reply deadline. Zero
	// means use the default.
	Timeout time.Duration
}

// Dispatcher wraps commands in the request envelope, registers them
// with the correlator before publishing, and arms the reply deadline.
//
// Registration strictly precedes publish, so a reply arriving on
// another goroutine in the same instant still finds its entry.
type Dispatcher struct {
	publisher  Publisher
	correlator *Correlator
	topic      string
	timeout    time.Duration

	logger  Logger
	metrics *metric.Metrics
}

// NewDispatcher creates a dispatcher publishing to the given topic.
// defaultTimeout bounds how long a command may stay outstanding.
func NewDispatcher(publisher Publisher, correlator *Correlator, topic string, defaultTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		publisher:  publisher,
		correlator: correlator,
		topic:      topic,
		timeout:    defaultTimeout,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// SetMetrics sets the metrics sink for the dispatcher.
func (d *Dispatcher) SetMetrics(m *metric.Metrics) {
	d.metrics = m
}

// Send dispatches a command and returns its pending handle.
//
// Send returns an error only for invalid input: an empty command kind,
// a duplicate explicit label, or an unencodable body. Failures after
// registration (publish errors, timeouts, device errors) settle the
// returned handle instead, so there is exactly one place to observe a
// command's fate.
func (d *Dispatcher) Send(cmd codec.Node, opts SendOptions) (*Pending, error) {
	if cmd.Kind == "" {
		return nil, ErrEmptyCommand
	}

	label := opts.Label
	if label == "" {
		label = uuid.NewString()
	}

	p, err := d.correlator.Register(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, label)
	}

	payload, err := codec.EncodeRequest(label, []codec.Node{cmd})
	if err != nil {
		d.correlator.discard(label)
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}
	p.setTimer(time.AfterFunc(timeout, func() {
		d.correlator.Expire(label)
	}))

	d.logger.Debug("dispatching command", "kind", cmd.Kind, "label", label)
	d.metrics.IncSent()

	if err := d.publisher.Publish(d.topic, payload); err != nil {
		d.logger.Error("command publish failed", "kind", cmd.Kind, "label", label, "error", err)
		d.correlator.Reject(label, fmt.Errorf("%w: %w", ErrTransport, err))
	}

	return p, nil
}
