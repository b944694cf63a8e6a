// Package config reads FabIntake settings from environment variables and
// exposes them as typed values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Config is the runtime configuration of the intake service. Durations are
// time.Duration values, so the environment accepts strings such as "30m" or
// "2s" and callers never convert units by hand.
type Config struct {
	Address         string
	LogLevel        slog.Level
	LogFormat       string
	MaxRequestBytes int64
	SessionCapacity int
	SessionTTL      time.Duration
	SubmitDelay     time.Duration
	StagingDir      string
	ShutdownTimeout time.Duration
}

const (
	defaultAddress         = ":8080"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	// A whole multipart request may carry several files, so its cap sits well
	// above the per-file limit of 50 MiB.
	defaultMaxRequestBytes = 256 << 20 // 256 MiB
	defaultSessionCapacity = 1024
	defaultSessionTTL      = 30 * time.Minute
	defaultSubmitDelay     = 2 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Load reads configuration from the environment, falling back to defaults for
// anything unset. Malformed numbers and durations fall back to defaults too;
// an unknown log level or format is an error.
func Load() (*Config, error) {
	cfg := &Config{
		Address:         readEnv("FABINTAKE_ADDRESS", defaultAddress),
		LogFormat:       readEnv("FABINTAKE_LOG_FORMAT", defaultLogFormat),
		MaxRequestBytes: parseInt64("FABINTAKE_MAX_REQUEST_BYTES", defaultMaxRequestBytes),
		SessionCapacity: parseInt("FABINTAKE_SESSION_CAPACITY", defaultSessionCapacity),
		SessionTTL:      parseDuration("FABINTAKE_SESSION_TTL", defaultSessionTTL),
		SubmitDelay:     parseDuration("FABINTAKE_SUBMIT_DELAY", defaultSubmitDelay),
		StagingDir:      readEnv("FABINTAKE_STAGING_DIR", filepath.Join(os.TempDir(), "fabintake")),
		ShutdownTimeout: parseDuration("FABINTAKE_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}
	level, err := parseLogLevel(readEnv("FABINTAKE_LOG_LEVEL", defaultLogLevel))
	if err != nil {
		return nil, fmt.Errorf("FABINTAKE_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level
	// Non-positive values are treated as unset. A zero submit delay is allowed
	// and makes the simulated boundary answer immediately.
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FABINTAKE_LOG_FORMAT: invalid format %q, want json or text", cfg.LogFormat)
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = defaultMaxRequestBytes
	}
	if cfg.SessionCapacity <= 0 {
		cfg.SessionCapacity = defaultSessionCapacity
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.SubmitDelay < 0 {
		cfg.SubmitDelay = defaultSubmitDelay
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg and installs it as the slog
// default.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid level %q, want debug, info, warn or error", s)
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parseInt64(key string, def int64) int64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
