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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SHIFTBOARD_CONFIG is set
//  3. env (prefix SHIFTBOARD_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx // reserved for future providers

	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SHIFTBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: SHIFTBOARD_ADDR, SHIFTBOARD_POS_BASE_URL, ...
	// Keys keep underscores to match the koanf tags on the struct.
	envProvider := env.Provider("SHIFTBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "shiftboard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
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
	case c.OrderPageSize < 1:
		return fmt.Errorf("%w: order_page_size must be positive", ErrInvalidConfig)
	case c.MaxOrderPages < 1:
		return fmt.Errorf("%w: max_order_pages must be positive", ErrInvalidConfig)
	case c.TurnTimeCeilingMinutes <= 0:
		return fmt.Errorf("%w: turn_time_ceiling_minutes must be positive", ErrInvalidConfig)
	case c.LaborBatchSize < 1:
		return fmt.Errorf("%w: labor_batch_size must be positive", ErrInvalidConfig)
	case c.LookbackDays < 1:
		return fmt.Errorf("%w: lookback_days must be positive", ErrInvalidConfig)
	}
	return nil
}
