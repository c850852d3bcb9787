package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Command outcome labels for the settled counter.
const (
	OutcomeOK             = "ok"
	OutcomeDeviceError    = "device_error"
	OutcomeTimeout        = "timeout"
	OutcomeTransportError = "transport_error"
	OutcomeConnectionLost = "connection_lost"
)

// Metrics contains the engine-level Prometheus metrics.
//
// A nil *Metrics is valid everywhere: every recording method is a
// no-op on a nil receiver, so components can be wired without metrics
// in tests.
type Metrics struct {
	MessagesReceived *prometheus.CounterVec
	MergesApplied    prometheus.Counter
	Baselines        prometheus.Counter
	CommandsSent     prometheus.Counter
	CommandsSettled  *prometheus.CounterVec
	MalformedDropped prometheus.Counter
	Connected        prometheus.Gauge
	PendingCommands  prometheus.Gauge
}

// New creates a Metrics instance with all engine metrics.
func New() *Metrics {
	return &Metrics{
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "botlink",
				Subsystem: "ingress",
				Name:      "messages_received_total",
				Help:      "Total inbound transport messages by classification",
			},
			[]string{"class"},
		),
		MergesApplied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "botlink",
				Subsystem: "state",
				Name:      "merges_applied_total",
				Help:      "Total partial state deltas merged",
			},
		),
		Baselines: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "botlink",
				Subsystem: "state",
				Name:      "baselines_total",
				Help:      "Total full snapshot re-baselines applied",
			},
		),
		CommandsSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "botlink",
				Subsystem: "commands",
				Name:      "sent_total",
				Help:      "Total commands dispatched to the device",
			},
		),
		CommandsSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "botlink",
				Subsystem: "commands",
				Name:      "settled_total",
				Help:      "Total commands settled by outcome",
			},
			[]string{"outcome"},
		),
		MalformedDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "botlink",
				Subsystem: "ingress",
				Name:      "malformed_dropped_total",
				Help:      "Total inbound messages dropped as malformed",
			},
		),
		Connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "botlink",
				Subsystem: "transport",
				Name:      "connected",
				Help:      "Transport connection status (0=disconnected, 1=connected)",
			},
		),
		PendingCommands: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "botlink",
				Subsystem: "commands",
				Name:      "pending",
				Help:      "Commands currently awaiting a reply",
			},
		),
	}
}

// Register registers all metrics with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.MessagesReceived,
		m.MergesApplied,
		m.Baselines,
		m.CommandsSent,
		m.CommandsSettled,
		m.MalformedDropped,
		m.Connected,
		m.PendingCommands,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncReceived records an inbound message by classification.
func (m *Metrics) IncReceived(class string) {
	if m == nil {
		return
	}
	m.MessagesReceived.WithLabelValues(class).Inc()
}

// IncMerge records an applied partial delta.
func (m *Metrics) IncMerge() {
	if m == nil {
		return
	}
	m.MergesApplied.Inc()
}

// IncBaseline records an applied full snapshot.
func (m *Metrics) IncBaseline() {
	if m == nil {
		return
	}
	m.Baselines.Inc()
}

// IncSent records a dispatched command.
func (m *Metrics) IncSent() {
	if m == nil {
		return
	}
	m.CommandsSent.Inc()
}

// IncSettled records a settled command by outcome.
func (m *Metrics) IncSettled(outcome string) {
	if m == nil {
		return
	}
	m.CommandsSettled.WithLabelValues(outcome).Inc()
}

// IncMalformed records a dropped malformed message.
func (m *Metrics) IncMalformed() {
	if m == nil {
		return
	}
	m.MalformedDropped.Inc()
}

// SetConnected records the transport connection state.
func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

// SetPending records the number of outstanding commands.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.PendingCommands.Set(float64(n))
}
