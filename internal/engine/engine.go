package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wrenhall/botlink/internal/codec"
	"github.com/wrenhall/botlink/internal/command"
	"github.com/wrenhall/botlink/internal/infrastructure/mqtt"
	"github.com/wrenhall/botlink/internal/ingress"
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

// Readiness is the engine's connection lifecycle state.
type Readiness int

const (
	// Disconnected means no transport connection is active.
	Disconnected Readiness = iota

	// Connecting means the transport is up but no state baseline has
	// arrived yet for this connection epoch.
	Connecting

	// Ready means a full snapshot has been applied; the mirrored state
	// is trustworthy and commands may be dispatched.
	Ready
)

// String returns the readiness name for logging.
func (r Readiness) String() string {
	switch r {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("readiness(%d)", int(r))
	}
}

// Transport is the messaging surface the engine needs. *mqtt.Client
// satisfies it; tests substitute a fake.
type Transport interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler mqtt.MessageHandler) error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
	IsConnected() bool
	Close() error
}

// Config holds engine settings.
type Config struct {
	// DeviceID identifies the remote device; it determines the topic
	// names.
	DeviceID string

	// CommandTimeout bounds how long a dispatched command may await its
	// reply.
	CommandTimeout time.Duration
}

// Engine mirrors a remote device's state and dispatches correlated
// commands over a pub/sub transport.
//
// One Engine serves one device. Construct with New, then Connect; the
// engine handles reconnects itself — each new connection epoch fails
// outstanding commands, re-subscribes, and re-baselines state before
// reporting Ready again.
type Engine struct {
	cfg        Config
	transport  Transport
	topics     mqtt.Topics
	store      *state.Store
	correlator *command.Correlator
	dispatcher *command.Dispatcher
	router     *ingress.Router

	mu        sync.Mutex
	readiness Readiness
	ready     chan struct{}

	logMu       sync.RWMutex
	logHandlers []func(codec.LogEvent)

	logger  Logger
	metrics *metric.Metrics
}

// New assembles an engine around the given transport. The transport
// should already be connected; call Connect to begin mirroring.
func New(transport Transport, cfg Config) *Engine {
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 30 * time.Second
	}

	topics := mqtt.Topics{Device: cfg.DeviceID}
	store := state.NewStore()
	correlator := command.NewCorrelator()
	dispatcher := command.NewDispatcher(transport, correlator, topics.FromClients(), cfg.CommandTimeout)

	router := ingress.NewRouter(ingress.Routes{
		Status:      topics.Status(),
		DeltaPrefix: topics.StatusDeltaPrefix(),
		Replies:     topics.FromDevice(),
		Logs:        topics.Logs(),
	}, store, correlator)

	e := &Engine{
		cfg:        cfg,
		transport:  transport,
		topics:     topics,
		store:      store,
		correlator: correlator,
		dispatcher: dispatcher,
		router:     router,
		readiness:  Disconnected,
		ready:      make(chan struct{}),
		logger:     noopLogger{},
	}

	store.OnChange(func(change state.Change) {
		if change.Baseline {
			e.markReady()
		}
	})
	router.SetOnLog(e.dispatchLog)

	return e
}

// SetLogger sets the logger for the engine and its components.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
	e.store.SetLogger(logger)
	e.correlator.SetLogger(logger)
	e.dispatcher.SetLogger(logger)
	e.router.SetLogger(logger)
}

// SetMetrics sets the metrics sink for the engine and its components.
func (e *Engine) SetMetrics(m *metric.Metrics) {
	e.metrics = m
	e.correlator.SetMetrics(m)
	e.dispatcher.SetMetrics(m)
	e.router.SetMetrics(m)
}

// Connect wires the transport callbacks, subscribes to the device's
// topics, requests a state baseline, and blocks until the engine is
// Ready or ctx expires.
//
// After Connect returns, reconnection is automatic; callers observe it
// only through Readiness and failed commands.
func (e *Engine) Connect(ctx context.Context) error {
	e.setReadiness(Connecting)
	e.metrics.SetConnected(e.transport.IsConnected())

	e.transport.SetOnConnect(e.handleConnect)
	e.transport.SetOnDisconnect(e.handleDisconnect)

	for _, topic := range []string{
		e.topics.Status(),
		e.topics.StatusDeltas(),
		e.topics.FromDevice(),
		e.topics.Logs(),
	} {
		if err := e.transport.Subscribe(topic, e.handleMessage); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	// The status topic is retained, so a snapshot usually arrives on
	// subscribe. Request one anyway; a broker without the retained
	// message would otherwise leave us Connecting forever.
	e.requestBaseline()

	e.mu.Lock()
	ready := e.ready
	e.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for state baseline: %w", ctx.Err())
	}
}

// Disconnect closes the transport. Outstanding commands fail with
// ErrConnectionLost; the mirrored state is retained but stale.
func (e *Engine) Disconnect() error {
	err := e.transport.Close()
	e.handleDisconnect(nil)
	return err
}

// Send dispatches a command and returns its pending handle. See
// command.Dispatcher.Send for the error contract.
func (e *Engine) Send(cmd codec.Node, opts command.SendOptions) (*command.Pending, error) {
	return e.dispatcher.Send(cmd, opts)
}

// Do dispatches a command and waits for its outcome.
func (e *Engine) Do(ctx context.Context, cmd codec.Node) (*command.Result, error) {
	p, err := e.dispatcher.Send(cmd, command.SendOptions{})
	if err != nil {
		return nil, err
	}
	return p.Wait(ctx)
}

// CurrentState returns a point-in-time deep copy of the mirrored state.
func (e *Engine) CurrentState() *state.Tree {
	return e.store.Snapshot()
}

// StateVersion returns the store's mutation counter.
func (e *Engine) StateVersion() uint64 {
	return e.store.Version()
}

// OnStateChange registers a handler invoked after every applied state
// mutation, in version order.
func (e *Engine) OnStateChange(fn state.ChangeFunc) {
	e.store.OnChange(fn)
}

// OnLog registers a handler for device log events.
func (e *Engine) OnLog(fn func(codec.LogEvent)) {
	if fn == nil {
		return
	}
	e.logMu.Lock()
	e.logHandlers = append(e.logHandlers, fn)
	e.logMu.Unlock()
}

// Readiness returns the current lifecycle state.
func (e *Engine) Readiness() Readiness {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readiness
}

// Outstanding returns the number of commands awaiting replies.
func (e *Engine) Outstanding() int {
	return e.correlator.Outstanding()
}

// handleMessage feeds one inbound transport message to the router.
func (e *Engine) handleMessage(topic string, payload []byte) error {
	return e.router.Handle(topic, payload)
}

// handleConnect runs on every (re)connect. Subscriptions are restored
// by the transport; our job is to start a fresh epoch.
func (e *Engine) handleConnect() {
	e.logger.Info("transport connected", "device", e.cfg.DeviceID)
	e.metrics.SetConnected(true)
	e.setReadiness(Connecting)
	e.requestBaseline()
}

// handleDisconnect runs when the transport drops. Delivery of in-flight
// commands cannot be assumed, so all of them fail now.
func (e *Engine) handleDisconnect(err error) {
	e.metrics.SetConnected(false)
	e.setReadiness(Disconnected)

	cause := command.ErrConnectionLost
	if err != nil {
		cause = fmt.Errorf("%w: %w", command.ErrConnectionLost, err)
	}
	failed := e.correlator.FailAll(cause)
	e.logger.Warn("transport disconnected",
		"device", e.cfg.DeviceID,
		"failed_commands", failed,
		"error", err,
	)
}

// requestBaseline asks the device for a full state snapshot.
func (e *Engine) requestBaseline() {
	p, err := e.dispatcher.Send(codec.Node{Kind: codec.KindReadStatus}, command.SendOptions{})
	if err != nil {
		e.logger.Error("baseline request failed", "error", err)
		return
	}
	go func() {
		// The handle always settles: by reply, timeout, or disconnect.
		if _, err := p.Wait(context.Background()); err != nil {
			e.logger.Warn("baseline request not acknowledged", "error", err)
		}
	}()
}

// markReady flips the engine to Ready and wakes Connect waiters. Runs
// on every baseline, including re-baselines after reconnect.
func (e *Engine) markReady() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readiness == Ready {
		return
	}
	e.readiness = Ready
	close(e.ready)
	e.logger.Info("state baseline applied", "device", e.cfg.DeviceID)
}

// setReadiness moves to a non-Ready state, re-arming the ready channel
// when leaving Ready.
func (e *Engine) setReadiness(r Readiness) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.readiness == Ready && r != Ready {
		e.ready = make(chan struct{})
	}
	e.readiness = r
}

// dispatchLog fans a device log event out to all registered handlers.
func (e *Engine) dispatchLog(event codec.LogEvent) {
	e.logMu.RLock()
	handlers := make([]func(codec.LogEvent), len(e.logHandlers))
	copy(handlers, e.logHandlers)
	e.logMu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}
