// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Storage drivers accepted by StorageDriver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// metricNamePattern matches Prometheus namespace and label names.
var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text, json or pretty.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// StorageDriver selects the measurement store: sqlite, postgres or memory.
	StorageDriver string `koanf:"storage_driver"`

	// DatabaseDSN is the driver-specific connection string.
	DatabaseDSN string `koanf:"database_dsn"`

	// AutoMigrate creates the schema on startup.
	AutoMigrate bool `koanf:"auto_migrate"`

	// Connection pool bounds for the SQL drivers.
	MaxOpenConns       int `koanf:"max_open_conns"`
	MaxIdleConns       int `koanf:"max_idle_conns"`
	ConnMaxLifetimeSec int `koanf:"conn_max_lifetime_sec"`

	// QueryTimeoutMS bounds a single store query; 0 disables the bound.
	QueryTimeoutMS int `koanf:"query_timeout_ms"`

	// MetricsEnabled mounts GET /metrics and starts the runtime collector.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace is the first segment of every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsRefreshSec is the runtime collector sampling period.
	MetricsRefreshSec int `koanf:"metrics_refresh_sec"`

	// MetricsLatencyBucketsMS overrides the latency histogram bounds. YAML only.
	MetricsLatencyBucketsMS []float64 `koanf:"metrics_latency_buckets_ms"`

	// MetricsLabels are constant labels added to every metric. YAML only.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// UIEnabled serves the chart UI at /.
	UIEnabled bool `koanf:"ui_enabled"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":5000",
		StorageDriver:      DriverSQLite,
		DatabaseDSN:        "file:analytics.db?_busy_timeout=5000",
		AutoMigrate:        true,
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
		QueryTimeoutMS:     5000,
		MetricsEnabled:     true,
		MetricsNamespace:   "analytics",
		MetricsRefreshSec:  10,
		UIEnabled:          true,
	}
}

// QueryTimeout returns QueryTimeoutMS as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMS) * time.Millisecond
}

// ConnMaxLifetime returns ConnMaxLifetimeSec as a duration.
func (c *Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSec) * time.Second
}

// MetricsRefresh returns MetricsRefreshSec as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSec) * time.Second
}

// Validate checks field values and normalizes enumerations to lower case.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}

	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("%w: database_dsn is required for %s", ErrInvalidConfig, c.StorageDriver)
		}
	default:
		return fmt.Errorf("%w: unknown storage_driver %q (allowed: sqlite, postgres, memory)", ErrInvalidConfig, c.StorageDriver)
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("%w: unknown log_format %q (allowed: text, json, pretty)", ErrInvalidConfig, c.LogFormat)
	}

	if c.QueryTimeoutMS < 0 {
		return fmt.Errorf("%w: query_timeout_ms must be >= 0", ErrInvalidConfig)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 || c.ConnMaxLifetimeSec < 0 {
		return fmt.Errorf("%w: connection pool settings must be >= 0", ErrInvalidConfig)
	}

	if !metricNamePattern.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	if c.MetricsRefreshSec <= 0 {
		return fmt.Errorf("%w: metrics_refresh_sec must be > 0", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsLatencyBucketsMS); i++ {
		if c.MetricsLatencyBucketsMS[i] <= c.MetricsLatencyBucketsMS[i-1] {
			return fmt.Errorf("%w: metrics_latency_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	for name := range c.MetricsLabels {
		if !metricNamePattern.MatchString(name) {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}
