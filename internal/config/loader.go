package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if STAGECRAFT_CONFIG is set
//  3. env (prefix STAGECRAFT_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx // reserved for remote providers

	base := New()

	k := koanf.New(".")

	if path := os.Getenv("STAGECRAFT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, wrap("load config file", err)
		}
	}

	// Map env keys like STAGECRAFT_QUEUE_SIZE -> queue_size. Underscores are
	// preserved to match the koanf tags on the struct.
	envProvider := env.Provider("STAGECRAFT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "stagecraft_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, wrap("load env", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, wrap("unmarshal config", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr must not be empty")
	case c.QueueSize <= 0:
		return errors.New("queue_size must be positive")
	case c.WorkerCount <= 0:
		return errors.New("worker_count must be positive")
	case c.GridResolution <= 0:
		return errors.New("grid_resolution must be positive")
	case c.EarlyReflectionWindowMS <= 0:
		return errors.New("early_reflection_window_ms must be positive")
	}
	return nil
}
