// Package config loads the application configuration from yaml or json
// files with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/evmobility/urbanev/core/charging"
	"github.com/evmobility/urbanev/core/logger"
	"github.com/evmobility/urbanev/core/metrics"
	"github.com/evmobility/urbanev/core/scoring"
	"github.com/evmobility/urbanev/infra/mqtt"
)

type Config struct {
	Charging charging.Config `json:"charging"`
	Scoring  scoring.Params  `json:"scoring"`
	Metrics  metrics.Config  `json:"metrics"`
	MQTT     mqtt.Config     `json:"mqtt"`
}

// Load reads the configuration file, applies K_ environment overrides
// (nested keys separated by double underscores) and defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Charging.SetDefaults()
	cfg.Scoring.SetDefaults()
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize clamps out-of-range charging parameters and reports suspicious
// scoring weights. It never fails; the adjusted values are logged.
func (c *Config) Normalize(log logger.Logger) {
	c.Charging.Normalize(log)
	c.Scoring.LogIfSuspicious(log)
}
