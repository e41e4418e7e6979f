package tracker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config aggregates every system's data definition. The substitution
// table, composite containers and hint triggers are data, not code, so a
// host ships them as a YAML file alongside its binary.
type Config struct {
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Valuation  ValuationConfig  `json:"valuation" yaml:"valuation"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
}

// DefaultConfig returns a config with conservative defaults: exchange
// pricing, profit remembered across sessions, no substitution rules and no
// classifier tables.
func DefaultConfig() *Config {
	return &Config{
		Engine:    EngineConfig{RememberProfit: true},
		Valuation: ValuationConfig{Mode: PriceModeExchange},
	}
}

// LoadConfig reads a YAML config file. Fields not present keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	if cfg.Valuation.Mode != "" {
		if _, ok := priceModeMultipliers[cfg.Valuation.Mode]; !ok {
			return nil, fmt.Errorf("%w: unknown price mode %q", ErrConfigInvalid, cfg.Valuation.Mode)
		}
	}
	return cfg, nil
}
