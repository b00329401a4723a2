package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LIVERTRACKER_CONFIG is set
//  3. env (prefix LIVERTRACKER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("LIVERTRACKER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like LIVERTRACKER_QUEUE_SIZE map to queue_size; underscores
	// are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("LIVERTRACKER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "livertracker_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DocumentQueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case cfg.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case cfg.ShardCount <= 0:
		return fmt.Errorf("%w: shard_count must be positive", ErrInvalidConfig)
	case cfg.TrendRecentWindow <= 0 || cfg.TrendBaselineWindow <= 0:
		return fmt.Errorf("%w: trend windows must be positive", ErrInvalidConfig)
	}
	for name, step := range cfg.MetricSteps {
		if step <= 0 {
			return fmt.Errorf("%w: metric step for %s must be positive", ErrInvalidConfig, name)
		}
	}
	return nil
}
