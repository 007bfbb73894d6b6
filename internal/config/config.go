// Package config defines the web server configuration and its loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Functions that may grow I/O accept context.Context first.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8081".
	Addr string `koanf:"addr"`

	// RefreshIntervalMS is the polling interval suggested to dashboard clients.
	RefreshIntervalMS int64 `koanf:"refresh_interval_ms"`

	// ExecutorWorkers sets the goroutines that run responder work.
	ExecutorWorkers int `koanf:"executor_workers"`

	// ExecutorQueueSize bounds the pending responder tasks.
	ExecutorQueueSize int `koanf:"executor_queue_size"`

	// RequestTimeoutMS caps how long the router waits on a responder.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful HTTP and executor shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8081",
		RefreshIntervalMS: 3000,
		ExecutorWorkers:   runtime.NumCPU(),
		ExecutorQueueSize: 1024,
		RequestTimeoutMS:  10_000,
		ShutdownTimeoutMS: 30_000,
	}
}

// RefreshInterval returns RefreshIntervalMS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
