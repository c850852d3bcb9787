package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/wrenhall/botlink/internal/infrastructure/config"
	"github.com/wrenhall/botlink/internal/infrastructure/logging"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("BOTLINK_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("BOTLINK_CONFIG", "/etc/botlink/config.yaml")
	if got := getConfigPath(); got != "/etc/botlink/config.yaml" {
		t.Errorf("getConfigPath() = %q, want override", got)
	}
}

func TestStartMetricsDisabled(t *testing.T) {
	metrics, err := startMetrics(context.Background(), config.MetricsConfig{Enabled: false}, logging.Discard())
	if err != nil {
		t.Fatalf("startMetrics() error: %v", err)
	}
	if metrics != nil {
		t.Error("disabled metrics returned a non-nil instance")
	}
}

func TestOpenJournalDisabled(t *testing.T) {
	journal, closeFn, err := openJournal(context.Background(), config.HistoryConfig{Enabled: false}, logging.Discard())
	if err != nil {
		t.Fatalf("openJournal() error: %v", err)
	}
	if journal != nil || closeFn != nil {
		t.Error("disabled history returned live handles")
	}
}

func TestOpenJournalEnabled(t *testing.T) {
	journal, closeFn, err := openJournal(context.Background(), config.HistoryConfig{
		Enabled:     true,
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 1,
	}, logging.Discard())
	if err != nil {
		t.Fatalf("openJournal() error: %v", err)
	}
	if journal == nil || closeFn == nil {
		t.Fatal("enabled history returned nil handles")
	}
	closeFn()
}

func TestConnectTelemetryDisabled(t *testing.T) {
	writer, err := connectTelemetry(config.TelemetryConfig{Enabled: false}, logging.Discard())
	if err != nil {
		t.Fatalf("connectTelemetry() error: %v", err)
	}
	if writer != nil {
		t.Error("disabled telemetry returned a non-nil writer")
	}
}
