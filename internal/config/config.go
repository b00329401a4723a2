// Package config defines service configuration and its loading order.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DocumentQueueSize bounds the in-memory ingestion queue.
	DocumentQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// IdempotencySize bounds the seen-document-ID cache.
	IdempotencySize int `koanf:"idempotency_size"`

	// ShardCount configures the number of shards in the observation store.
	ShardCount int `koanf:"shard_count"`

	// AuditDSN is the SQLite DSN for the candidate audit log.
	AuditDSN string `koanf:"audit_dsn"`

	// ScoreCacheSize bounds the number of cached score results.
	ScoreCacheSize int `koanf:"score_cache_size"`

	// TrendRecentWindow and TrendBaselineWindow size the two windows the
	// trend classifier compares.
	TrendRecentWindow   int `koanf:"trend_recent_window"`
	TrendBaselineWindow int `koanf:"trend_baseline_window"`

	// MetricAliases adds extra raw-name aliases: raw spelling -> canonical ID.
	MetricAliases map[string]string `koanf:"metric_aliases"`

	// MetricSteps overrides per-metric trend step sizes.
	MetricSteps map[string]float64 `koanf:"metric_steps"`
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DocumentQueueSize:   10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		IdempotencySize:     100_000,
		ShardCount:          8,
		AuditDSN:            "file:livertracker_audit.db",
		ScoreCacheSize:      10_000,
		TrendRecentWindow:   2,
		TrendBaselineWindow: 3,
	}
}
