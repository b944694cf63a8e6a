package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"FABINTAKE_ADDRESS", "FABINTAKE_LOG_LEVEL", "FABINTAKE_LOG_FORMAT",
		"FABINTAKE_MAX_REQUEST_BYTES", "FABINTAKE_SESSION_CAPACITY", "FABINTAKE_SESSION_TTL",
		"FABINTAKE_SUBMIT_DELAY", "FABINTAKE_STAGING_DIR", "FABINTAKE_SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != ":8080" || cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SubmitDelay != 2*time.Second || cfg.SessionTTL != 30*time.Minute || cfg.SessionCapacity != 1024 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.StagingDir == "" {
		t.Fatalf("staging dir should default to a temp location")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FABINTAKE_ADDRESS", "127.0.0.1:9000")
	t.Setenv("FABINTAKE_LOG_LEVEL", "DEBUG")
	t.Setenv("FABINTAKE_LOG_FORMAT", "text")
	t.Setenv("FABINTAKE_SUBMIT_DELAY", "150ms")
	t.Setenv("FABINTAKE_SESSION_CAPACITY", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != "127.0.0.1:9000" || cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "text" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SubmitDelay != 150*time.Millisecond {
		t.Fatalf("submit delay = %v", cfg.SubmitDelay)
	}
	if cfg.SessionCapacity != defaultSessionCapacity {
		t.Fatalf("malformed capacity should fall back, got %d", cfg.SessionCapacity)
	}
}

func TestLoadRejectsBadLogSettings(t *testing.T) {
	t.Setenv("FABINTAKE_LOG_LEVEL", "loud")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
	t.Setenv("FABINTAKE_LOG_LEVEL", "info")
	t.Setenv("FABINTAKE_LOG_FORMAT", "xml")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown log format")
	}
}
