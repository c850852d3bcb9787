// Botlink - device mirror and command client
//
// Botlink maintains a live, versioned mirror of a remote device's
// reported state over MQTT and dispatches correlated commands to it.
// Optionally it journals state changes to SQLite, exports runtime
// readings to InfluxDB, and serves Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/wrenhall/botlink/migrations"

	"github.com/wrenhall/botlink/internal/codec"
	"github.com/wrenhall/botlink/internal/engine"
	"github.com/wrenhall/botlink/internal/history"
	"github.com/wrenhall/botlink/internal/infrastructure/config"
	"github.com/wrenhall/botlink/internal/infrastructure/database"
	"github.com/wrenhall/botlink/internal/infrastructure/logging"
	"github.com/wrenhall/botlink/internal/infrastructure/mqtt"
	"github.com/wrenhall/botlink/internal/metric"
	"github.com/wrenhall/botlink/internal/state"
	"github.com/wrenhall/botlink/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// connectTimeout bounds the initial wait for the state baseline.
const connectTimeout = 60 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting botlink",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Prometheus metrics (optional)
	metrics, err := startMetrics(ctx, cfg.Metrics, log)
	if err != nil {
		return fmt.Errorf("starting metrics endpoint: %w", err)
	}

	// State-change journal (optional)
	journal, closeJournal, err := openJournal(ctx, cfg.History, log)
	if err != nil {
		return err
	}
	if closeJournal != nil {
		defer closeJournal()
	}

	// Telemetry export (optional)
	telemetryWriter, err := connectTelemetry(cfg.Telemetry, log)
	if err != nil {
		return err
	}
	if telemetryWriter != nil {
		defer func() {
			log.Info("closing telemetry connection")
			if closeErr := telemetryWriter.Close(); closeErr != nil {
				log.Error("error closing telemetry", "error", closeErr)
			}
		}()
	}

	// Connect to the MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Assemble the engine
	eng := engine.New(mqttClient, engine.Config{
		DeviceID:       cfg.Device.ID,
		CommandTimeout: cfg.CommandTimeout(),
	})
	eng.SetLogger(log)
	eng.SetMetrics(metrics)

	wireStateObservers(ctx, eng, cfg, journal, telemetryWriter, log)
	eng.OnLog(func(event codec.LogEvent) {
		log.Info("device log",
			"message", event.Message,
			"type", event.Type,
			"verbosity", event.Verbosity,
		)
	})

	connectCtx, cancelConnect := context.WithTimeout(ctx, connectTimeout)
	defer cancelConnect()
	if err := eng.Connect(connectCtx); err != nil {
		return fmt.Errorf("connecting engine: %w", err)
	}
	log.Info("engine ready",
		"device", cfg.Device.ID,
		"state_version", eng.StateVersion(),
	)

	// Periodic journal pruning (if enabled)
	if journal != nil && cfg.History.RetentionDays > 0 {
		go pruneLoop(ctx, journal, cfg.HistoryRetention(), log)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	if err := eng.Disconnect(); err != nil {
		log.Error("error disconnecting engine", "error", err)
	}

	log.Info("botlink stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BOTLINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BOTLINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startMetrics registers the engine collectors and serves /metrics.
// Returns nil metrics when the endpoint is disabled; every component
// tolerates that.
func startMetrics(ctx context.Context, cfg config.MetricsConfig, log *logging.Logger) (*metric.Metrics, error) {
	if !cfg.Enabled {
		log.Info("metrics endpoint disabled")
		return nil, nil
	}

	metrics := metric.New()
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx) //nolint:errcheck // Best effort on shutdown
	}()

	log.Info("metrics endpoint started", "addr", cfg.Addr)
	return metrics, nil
}

// openJournal opens and migrates the history database. Returns a nil
// journal when history is disabled.
func openJournal(ctx context.Context, cfg config.HistoryConfig, log *logging.Logger) (*history.Journal, func(), error) {
	if !cfg.Enabled {
		log.Info("state history disabled")
		return nil, nil, nil
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("history database ready", "path", cfg.Path)

	closeFn := func() {
		log.Info("closing history database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing history database", "error", closeErr)
		}
	}
	return history.New(db), closeFn, nil
}

// connectTelemetry connects the InfluxDB writer. Returns nil when
// telemetry is disabled.
func connectTelemetry(cfg config.TelemetryConfig, log *logging.Logger) (*telemetry.Writer, error) {
	writer, err := telemetry.Connect(cfg)
	if err != nil {
		if errors.Is(err, telemetry.ErrDisabled) {
			log.Info("telemetry export disabled")
			return nil, nil
		}
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	writer.SetOnError(func(err error) {
		log.Error("telemetry write error", "error", err)
	})
	log.Info("telemetry connected", "url", cfg.URL, "bucket", cfg.Bucket)
	return writer, nil
}

// wireStateObservers attaches journal and telemetry sinks to the
// engine's state-change stream.
func wireStateObservers(ctx context.Context, eng *engine.Engine, cfg *config.Config, journal *history.Journal, writer *telemetry.Writer, log *logging.Logger) {
	if journal == nil && writer == nil {
		return
	}

	eng.OnStateChange(func(change state.Change) {
		if journal != nil {
			source := history.SourceDelta
			if change.Baseline {
				source = history.SourceBaseline
			}
			if err := journal.Record(ctx, source, change.Version, change.Next); err != nil {
				log.Error("journal write failed", "error", err, "version", change.Version)
			}
		}

		if writer != nil {
			writer.WriteReadings(cfg.Device.ID, change.Next.InformationalSettings)
			if change.Next.LocationData != nil {
				writer.WritePosition(cfg.Device.ID, change.Next.LocationData.Position)
			}
		}
	})
}

// pruneLoop trims journal entries past the retention window once a day.
func pruneLoop(ctx context.Context, journal *history.Journal, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := journal.Prune(ctx, retention)
			if err != nil {
				log.Error("journal prune failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("journal pruned", "removed", removed)
			}
		}
	}
}
