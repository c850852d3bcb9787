package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/wrenhall/botlink/internal/infrastructure/config"
	"github.com/wrenhall/botlink/internal/state"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	// millisecondsPerSecond converts seconds to milliseconds for the InfluxDB API.
	millisecondsPerSecond = 1000
)

// Writer exports device telemetry readings to InfluxDB.
//
// Writes are non-blocking and batched by the underlying client; errors
// surface asynchronously through SetOnError.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.TelemetryConfig

	connected bool
	mu        sync.RWMutex

	onError func(err error)
}

// Connect establishes a connection to the InfluxDB server.
//
// Parameters:
//   - cfg: Telemetry configuration from config.yaml
//
// Returns:
//   - *Writer: Connected writer ready for use
//   - error: ErrDisabled when telemetry is off, or if connection fails
func Connect(cfg config.TelemetryConfig) (*Writer, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	// #nosec G115 -- values validated above to be positive
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	w := &Writer{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		cfg:       cfg,
		connected: true,
	}

	go w.handleWriteErrors(w.writeAPI.Errors())

	return w, nil
}

// handleWriteErrors forwards async write errors to the callback.
func (w *Writer) handleWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		w.mu.RLock()
		callback := w.onError
		w.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// WriteReadings records the numeric runtime readings from a device
// status report: resource usage, temperature, wifi level, uptime.
// Unknown readings are skipped; a report with no known readings writes
// nothing.
//
// The write is non-blocking; data is batched and sent asynchronously.
func (w *Writer) WriteReadings(deviceID string, info *state.InformationalSettings) {
	if info == nil || !w.IsConnected() {
		return
	}

	fields := make(map[string]interface{})
	if info.MemoryUsage != nil {
		fields["memory_usage"] = *info.MemoryUsage
	}
	if info.DiskUsage != nil {
		fields["disk_usage"] = *info.DiskUsage
	}
	if info.CPUUsage != nil {
		fields["cpu_usage"] = *info.CPUUsage
	}
	if info.SocTemp != nil {
		fields["soc_temp"] = *info.SocTemp
	}
	if info.WifiLevel != nil {
		fields["wifi_level"] = *info.WifiLevel
	}
	if info.Uptime != nil {
		fields["uptime_seconds"] = *info.Uptime
	}
	if len(fields) == 0 {
		return
	}

	tags := map[string]string{"device_id": deviceID}
	if info.SyncStatus != nil {
		tags["sync_status"] = *info.SyncStatus
	}

	w.writeAPI.WritePoint(write.NewPoint("device_readings", tags, fields, time.Now()))
}

// WritePosition records the device's reported position.
func (w *Writer) WritePosition(deviceID string, position *state.AxisValues) {
	if position == nil || !w.IsConnected() {
		return
	}

	fields := make(map[string]interface{})
	if position.X != nil {
		fields["x"] = *position.X
	}
	if position.Y != nil {
		fields["y"] = *position.Y
	}
	if position.Z != nil {
		fields["z"] = *position.Z
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"device_position",
		map[string]string{"device_id": deviceID},
		fields,
		time.Now(),
	)
	w.writeAPI.WritePoint(point)
}

// Close flushes pending writes and shuts the client down.
func (w *Writer) Close() error {
	if w.client == nil {
		return nil
	}

	w.mu.Lock()
	w.connected = false
	w.mu.Unlock()

	w.writeAPI.Flush()
	w.client.Close()
	return nil
}

// HealthCheck verifies the InfluxDB connection is alive and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (w *Writer) HealthCheck(ctx context.Context) error {
	if !w.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := w.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("telemetry health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("telemetry health check failed: server not healthy")
	}
	return nil
}

// IsConnected returns the last known connection state.
func (w *Writer) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// SetOnError sets a callback for asynchronous write failures.
func (w *Writer) SetOnError(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Flush forces all pending writes to be sent. Safe to call after Close.
func (w *Writer) Flush() {
	if w.writeAPI == nil || !w.IsConnected() {
		return
	}
	w.writeAPI.Flush()
}
