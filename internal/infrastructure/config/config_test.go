package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "7410", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "127.0.0.1:7410", cfg.Server.Addr())

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Lifecycle tuning
	assert.True(t, cfg.ControlRoom.Watch)
	assert.Equal(t, 5000, cfg.Supervisor.LogCapacity)
	assert.Equal(t, 4*time.Second, cfg.Supervisor.StopTimeout)
	assert.Equal(t, 30*time.Second, cfg.Supervisor.StopCommandTimeout)
	assert.Equal(t, 3*time.Second, cfg.Runner.CancelTimeout)
	assert.Equal(t, time.Second, cfg.Runner.OutputDrain)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                    "9000",
		"HOST":                    "0.0.0.0",
		"LOG_LEVEL":               "debug",
		"LOG_DEV":                 "true",
		"RATE_LIMIT_RPS":          "500",
		"RATE_LIMIT_BURST":        "1000",
		"RATE_LIMIT_ENABLED":      "false",
		"CONTROLROOM_CONFIG_PATH": "/etc/controlroom.config.yaml",
		"CONTROLROOM_WATCH":       "false",
		"SERVICE_LOG_CAPACITY":    "200",
		"SERVICE_STOP_TIMEOUT":    "10s",
		"STOP_COMMAND_TIMEOUT":    "1m",
		"RUN_CANCEL_TIMEOUT":      "500ms",
		"RUN_OUTPUT_DRAIN":        "2s",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "/etc/controlroom.config.yaml", cfg.ControlRoom.Path)
	assert.False(t, cfg.ControlRoom.Watch)
	assert.Equal(t, 200, cfg.Supervisor.LogCapacity)
	assert.Equal(t, 10*time.Second, cfg.Supervisor.StopTimeout)
	assert.Equal(t, time.Minute, cfg.Supervisor.StopCommandTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Runner.CancelTimeout)
	assert.Equal(t, 2*time.Second, cfg.Runner.OutputDrain)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply
	assert.Equal(t, 5000, cfg.Supervisor.LogCapacity)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric rate", "RATE_LIMIT_RPS", "fast"},
		{"bad duration", "SERVICE_STOP_TIMEOUT", "soon"},
		{"bad bool", "CONTROLROOM_WATCH", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}
