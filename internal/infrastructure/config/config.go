// Package config loads backend configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Terminal  TerminalConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// TerminalConfig holds terminal session configuration.
type TerminalConfig struct {
	// Shell overrides shell resolution when set and executable.
	Shell string `envconfig:"TERMINAL_SHELL" default:""`
	// OutputBuffer is the per-stream line channel capacity.
	OutputBuffer int `envconfig:"TERMINAL_OUTPUT_BUFFER" default:"1024"`
	// GracefulStop sends SIGTERM and waits before SIGKILL when stopping.
	GracefulStop        bool          `envconfig:"TERMINAL_GRACEFUL_STOP" default:"false"`
	GracefulStopTimeout time.Duration `envconfig:"TERMINAL_GRACEFUL_STOP_TIMEOUT" default:"2s"`
	// ReapInterval schedules idle-session cleanup; 0 disables the reaper.
	ReapInterval time.Duration `envconfig:"TERMINAL_REAP_INTERVAL" default:"0s"`
	MaxIdle      time.Duration `envconfig:"TERMINAL_MAX_IDLE" default:"30m"`
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
			Port: "8090",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Terminal: TerminalConfig{
			OutputBuffer:        1024,
			GracefulStopTimeout: 2 * time.Second,
			MaxIdle:             30 * time.Minute,
		},
	}
}
