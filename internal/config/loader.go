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
//  1. defaults (New(ctx))
//  2. file (YAML) if FIRE_CONFIG is set
//  3. env (prefix FIRE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("FIRE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FIRE_ADDR, FIRE_DB_PATH, FIRE_RB_BASE_THRESHOLD, ...
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FIRE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fire_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WindowWeeks < 1 || c.WindowWeeks > 4:
		return fmt.Errorf("%w: window_weeks must be in [1,4]", ErrInvalidConfig)
	case c.RBBaseThreshold <= 0 || c.BaseThreshold <= 0:
		return fmt.Errorf("%w: base thresholds must be positive", ErrInvalidConfig)
	case c.HighConfidenceFactor <= 1:
		return fmt.Errorf("%w: high_confidence_factor must exceed 1", ErrInvalidConfig)
	case c.MaxDeltaLimit < 1:
		return fmt.Errorf("%w: max_delta_limit must be positive", ErrInvalidConfig)
	}
	for name, weights := range map[string]map[string]float64{
		"pillar_weights":        c.PillarWeights,
		"qb_pillar_weights":     c.QBPillarWeights,
		"role_weights_rb":       c.RoleWeightsRB,
		"role_weights_receiver": c.RoleWeightsReceiver,
		"role_weights_qb":       c.RoleWeightsQB,
	} {
		for key, w := range weights {
			if w <= 0 {
				return fmt.Errorf("%w: %s.%s must be positive", ErrInvalidConfig, name, key)
			}
		}
	}
	return nil
}
