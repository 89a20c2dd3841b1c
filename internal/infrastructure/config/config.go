package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration.
type Config struct {
	Server      ServerConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
	ControlRoom ControlRoomFileConfig
	Supervisor  SupervisorConfig
	Runner      RunnerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7410"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// ControlRoomFileConfig locates the control room file.
type ControlRoomFileConfig struct {
	// Path overrides discovery; empty searches the working directory and its parent
	Path  string `envconfig:"CONTROLROOM_CONFIG_PATH"`
	Watch bool   `envconfig:"CONTROLROOM_WATCH" default:"true"`
}

// SupervisorConfig holds service lifecycle tuning.
type SupervisorConfig struct {
	LogCapacity        int           `envconfig:"SERVICE_LOG_CAPACITY" default:"5000"`
	StopTimeout        time.Duration `envconfig:"SERVICE_STOP_TIMEOUT" default:"4s"`
	StopCommandTimeout time.Duration `envconfig:"STOP_COMMAND_TIMEOUT" default:"30s"`
}

// RunnerConfig holds ad-hoc run tuning.
type RunnerConfig struct {
	CancelTimeout time.Duration `envconfig:"RUN_CANCEL_TIMEOUT" default:"3s"`
	OutputDrain   time.Duration `envconfig:"RUN_OUTPUT_DRAIN" default:"1s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7410",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
		ControlRoom: ControlRoomFileConfig{
			Watch: true,
		},
		Supervisor: SupervisorConfig{
			LogCapacity:        5000,
			StopTimeout:        4 * time.Second,
			StopCommandTimeout: 30 * time.Second,
		},
		Runner: RunnerConfig{
			CancelTimeout: 3 * time.Second,
			OutputDrain:   time.Second,
		},
	}
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}
