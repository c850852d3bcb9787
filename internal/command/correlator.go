package command

import (
	"errors"
	"sync"
	"time"

	"github.com/wrenhall/botlink/internal/metric"
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

// Correlator tracks outstanding commands and matches asynchronous
// replies back to them by correlation id.
//
// Every entry is guaranteed to reach a terminal state: resolved,
// rejected, expired, or failed wholesale on disconnect. Settling an
// unknown or already-settled id is a logged no-op, never an error —
// duplicate and late replies are normal on an at-least-once transport.
//
// All public methods are thread-safe.
type Correlator struct {
	mu      sync.Mutex
	pending map[string]*Pending

	logger  Logger
	metrics *metric.Metrics
}

// NewCorrelator creates an empty correlator.
func NewCorrelator() *Correlator {
	return &Correlator{
		pending: make(map[string]*Pending),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the correlator.
func (c *Correlator) SetLogger(logger Logger) {
	c.logger = logger
}

// SetMetrics sets the metrics sink for the correlator. A nil sink is
// valid and records nothing.
func (c *Correlator) SetMetrics(m *metric.Metrics) {
	c.metrics = m
}

// Register creates a pending entry for the given correlation id and
// returns its handle. The id must not already be outstanding.
func (c *Correlator) Register(id string) (*Pending, error) {
	if id == "" {
		return nil, ErrDuplicateLabel
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pending[id]; exists {
		return nil, ErrDuplicateLabel
	}

	p := newPending(id)
	c.pending[id] = p
	c.metrics.SetPending(len(c.pending))
	return p, nil
}

// Resolve settles the entry for id successfully and removes it.
// Returns false if no such entry exists (duplicate or late reply).
func (c *Correlator) Resolve(id string, result *Result) bool {
	p := c.take(id)
	if p == nil {
		c.logger.Debug("reply for unknown command dropped", "label", id)
		return false
	}

	if result == nil {
		result = &Result{Label: id, ReceivedAt: time.Now()}
	}
	p.settle(result, nil)
	c.metrics.IncSettled(metric.OutcomeOK)
	return true
}

// Reject settles the entry for id with an error and removes it.
// Returns false if no such entry exists.
func (c *Correlator) Reject(id string, err error) bool {
	p := c.take(id)
	if p == nil {
		c.logger.Debug("error reply for unknown command dropped", "label", id)
		return false
	}

	p.settle(nil, err)
	c.metrics.IncSettled(outcomeFor(err))
	return true
}

// Expire settles the entry for id with ErrTimeout and removes it,
// bounding memory even when the caller stopped waiting. Invoked by the
// engine-owned timeout timer.
func (c *Correlator) Expire(id string) bool {
	p := c.take(id)
	if p == nil {
		return false
	}

	c.logger.Warn("command timed out", "label", id)
	p.settle(nil, ErrTimeout)
	c.metrics.IncSettled(metric.OutcomeTimeout)
	return true
}

// FailAll settles every outstanding entry with the given error and
// clears the table. Used on disconnect: in-flight commands cannot be
// assumed delivered. Returns the number of entries failed.
func (c *Correlator) FailAll(err error) int {
	c.mu.Lock()
	failed := c.pending
	c.pending = make(map[string]*Pending)
	c.metrics.SetPending(0)
	c.mu.Unlock()

	outcome := outcomeFor(err)
	for _, p := range failed {
		p.settle(nil, err)
		c.metrics.IncSettled(outcome)
	}

	if len(failed) > 0 {
		c.logger.Info("failed all outstanding commands", "count", len(failed), "error", err)
	}
	return len(failed)
}

// Outstanding returns the number of commands awaiting a reply.
func (c *Correlator) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// take removes and returns the entry for id, or nil.
func (c *Correlator) take(id string) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	c.metrics.SetPending(len(c.pending))
	return p
}

// discard removes an entry without settling it. Used when dispatch
// fails before the handle was returned to any caller.
func (c *Correlator) discard(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	c.metrics.SetPending(len(c.pending))
}

// outcomeFor maps a settlement error to its metric label.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return metric.OutcomeTimeout
	case errors.Is(err, ErrTransport):
		return metric.OutcomeTransportError
	case errors.Is(err, ErrConnectionLost):
		return metric.OutcomeConnectionLost
	default:
		return metric.OutcomeDeviceError
	}
}
