// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Layer file and env overrides in Load.
// - External errors are wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory calculation job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of calculation workers.
	WorkerCount int `koanf:"worker_count"`

	// ResultStoreSize bounds how many finished calculations are kept
	// for retrieval on the async path.
	ResultStoreSize int `koanf:"result_store_size"`

	// DedupeSize bounds the in-flight request-id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SyncTimeoutMS caps how long POST /calculations waits for a result.
	SyncTimeoutMS int `koanf:"sync_timeout_ms"`

	// GridResolution is the default coverage-grid spacing in meters.
	GridResolution float64 `koanf:"grid_resolution"`

	// EarHeight is the default listening height in meters for coverage grids.
	EarHeight float64 `koanf:"ear_height"`

	// EarlyReflectionWindowMS bounds which reflections count as early.
	EarlyReflectionWindowMS float64 `koanf:"early_reflection_window_ms"`

	// CatalogPath optionally overrides the embedded equipment catalog.
	CatalogPath string `koanf:"catalog_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9090",
		QueueSize:               10_000,
		WorkerCount:             runtime.NumCPU() * 2,
		ResultStoreSize:         10_000,
		DedupeSize:              50_000,
		SyncTimeoutMS:           10_000,
		GridResolution:          1.0,
		EarHeight:               1.7,
		EarlyReflectionWindowMS: 50,
	}
}
