// Package config provides configuration loading for notedraft.
//
// Configuration is read from an optional YAML file and then overridden by
// NOTEDRAFT_* environment variables. See LoadWithFile.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendNATS   = "nats"
)

// DefaultAutosaveInterval is the delay between two autosave ticks of a field.
const DefaultAutosaveInterval = 30 * time.Second

// Config holds the complete notedraft configuration.
type Config struct {
	Autosave  AutosaveConfig  `koanf:"autosave"`
	Store     StoreConfig     `koanf:"store"`
	NATS      NATSConfig      `koanf:"nats"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// AutosaveConfig holds draft autosave settings shared by every field.
type AutosaveConfig struct {
	Interval Duration `koanf:"interval"`
}

// StoreConfig selects and configures the draft storage backend.
type StoreConfig struct {
	Backend    string   `koanf:"backend"`     // memory, file or nats
	Origin     string   `koanf:"origin"`      // scope shared by all drafts of one editor
	Path       string   `koanf:"path"`        // root directory for the file backend
	QuotaBytes ByteSize `koanf:"quota_bytes"` // 0 disables the quota
}

// NATSConfig holds JetStream key/value settings for the nats backend.
type NATSConfig struct {
	URL             string   `koanf:"url"`
	Token           Secret   `koanf:"token"`
	BucketPrefix    string   `koanf:"bucket_prefix"`
	WritesPerSecond float64  `koanf:"writes_per_second"`
	Burst           int      `koanf:"burst"`
	Timeout         Duration `koanf:"timeout"`
}

// LoggingConfig holds the subset of logging settings exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"` // log file; the editor logs nowhere else
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	Protocol    string `koanf:"protocol"`
	Insecure    bool   `koanf:"insecure"`
	ServiceName string `koanf:"service_name"`
}

var originPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Default returns the configuration used when no file or env override exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
//
// Returns an error if:
//   - the autosave interval is not positive
//   - the store backend is unknown or the origin has invalid characters
//   - the nats backend is selected without a URL or with a non-positive rate
//   - telemetry is enabled without an endpoint
func (c *Config) Validate() error {
	if c.Autosave.Interval.Duration() <= 0 {
		return errors.New("autosave interval must be positive")
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendNATS:
	default:
		return fmt.Errorf("unknown store backend %q (must be memory, file or nats)", c.Store.Backend)
	}
	if !originPattern.MatchString(c.Store.Origin) {
		return fmt.Errorf("invalid store origin %q (must be alphanumeric, hyphen, underscore)", c.Store.Origin)
	}
	if c.Store.QuotaBytes < 0 {
		return fmt.Errorf("store quota cannot be negative: %d", c.Store.QuotaBytes)
	}
	if c.Store.Backend == BackendFile && c.Store.Path == "" {
		return errors.New("store path is required for the file backend")
	}

	if c.Store.Backend == BackendNATS {
		if c.NATS.URL == "" {
			return errors.New("nats url is required for the nats backend")
		}
		if c.NATS.WritesPerSecond <= 0 {
			return fmt.Errorf("nats writes_per_second must be positive, got %v", c.NATS.WritesPerSecond)
		}
		if c.NATS.Burst < 1 {
			return fmt.Errorf("nats burst must be >= 1, got %d", c.NATS.Burst)
		}
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry endpoint is required when telemetry is enabled")
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Autosave.Interval == 0 {
		cfg.Autosave.Interval = Duration(DefaultAutosaveInterval)
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendFile
	}
	if cfg.Store.Origin == "" {
		cfg.Store.Origin = "default"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "~/.local/share/notedraft/drafts"
	}

	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.NATS.BucketPrefix == "" {
		cfg.NATS.BucketPrefix = "drafts"
	}
	if cfg.NATS.WritesPerSecond == 0 {
		cfg.NATS.WritesPerSecond = 5
	}
	if cfg.NATS.Burst == 0 {
		cfg.NATS.Burst = 10
	}
	if cfg.NATS.Timeout == 0 {
		cfg.NATS.Timeout = Duration(5 * time.Second)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "notedraft"
	}
}
