package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30*time.Second, cfg.Autosave.Interval.Duration())
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "default", cfg.Store.Origin)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "drafts", cfg.NATS.BucketPrefix)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "notedraft", cfg.Telemetry.ServiceName)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Autosave.Interval = 0 },
			wantErr: "autosave interval must be positive",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "sessionstorage" },
			wantErr: "unknown store backend",
		},
		{
			name:    "origin with slash",
			mutate:  func(c *Config) { c.Store.Origin = "../etc" },
			wantErr: "invalid store origin",
		},
		{
			name:    "negative quota",
			mutate:  func(c *Config) { c.Store.QuotaBytes = -1 },
			wantErr: "store quota cannot be negative",
		},
		{
			name: "file backend without path",
			mutate: func(c *Config) {
				c.Store.Path = ""
			},
			wantErr: "store path is required",
		},
		{
			name: "nats backend without url",
			mutate: func(c *Config) {
				c.Store.Backend = BackendNATS
				c.NATS.URL = ""
			},
			wantErr: "nats url is required",
		},
		{
			name: "nats backend with zero rate",
			mutate: func(c *Config) {
				c.Store.Backend = BackendNATS
				c.NATS.WritesPerSecond = 0
			},
			wantErr: "writes_per_second must be positive",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging format",
		},
		{
			name: "telemetry without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			wantErr: "telemetry endpoint is required",
		},
		{
			name:   "memory backend ignores path",
			mutate: func(c *Config) { c.Store.Backend = BackendMemory; c.Store.Path = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("45s")))
	assert.Equal(t, 45*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))

	text, err := Duration(2 * time.Minute).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2m0s", string(text))
}

func TestByteSize_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteSize
		wantErr bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"512B", 512, false},
		{"4KB", 4096, false},
		{"2 mb", 2 << 20, false},
		{"1GB", 1 << 30, false},
		{"", 0, true},
		{"1.5MB", 0, true},
		{"-1KB", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var b ByteSize
			err := b.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}
}

func TestSecret_NeverPrinted(t *testing.T) {
	s := Secret("s3cr3t-token")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "s3cr3t-token", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(struct {
		Token Secret `json:"token"`
	}{Token: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"[REDACTED]"}`, string(data))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}
