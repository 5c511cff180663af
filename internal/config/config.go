// Package config loads cerebunit settings from YAML files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"cerebunit/internal/model"
	"cerebunit/internal/score"
)

const (
	EnvLogLevel  = "CEREBUNIT_LOG_LEVEL"
	EnvStoreKind = "CEREBUNIT_STORE"
	EnvDBPath    = "CEREBUNIT_DB_PATH"
)

type Config struct {
	// Simulation is the protocol applied to every model before it runs.
	Simulation model.SimulationProperties `json:"simulation" yaml:"simulation"`

	Comparison ComparisonConfig `json:"comparison" yaml:"comparison"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`

	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ComparisonConfig selects how predictions are compared to observations.
type ComparisonConfig struct {
	// Policy is "tolerance" (default) or "firing".
	Policy string `json:"policy" yaml:"policy"`

	// RelativeTolerance and AbsoluteTolerance bound the tolerance policy.
	RelativeTolerance float64 `json:"relative_tolerance" yaml:"relative_tolerance"`
	AbsoluteTolerance float64 `json:"absolute_tolerance" yaml:"absolute_tolerance"`

	// FiringThreshold is the rate in Hz the firing policy must exceed.
	FiringThreshold float64 `json:"firing_threshold" yaml:"firing_threshold"`
}

type LoggingConfig struct {
	// Level is "info" (default), "debug", "trace", "warn" or "error".
	Level string `json:"level" yaml:"level"`
}

type StorageConfig struct {
	// Kind is "memory" or "sqlite".
	Kind   string `json:"kind" yaml:"kind"`
	DBPath string `json:"db_path" yaml:"db_path"`
}

func Default() *Config {
	return &Config{
		Simulation: model.DefaultSimulationProperties(),
		Comparison: ComparisonConfig{
			Policy:            "tolerance",
			RelativeTolerance: score.DefaultRelativeTolerance,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Kind:   "memory",
			DBPath: "cerebunit.db",
		},
	}
}

// Load applies defaults, then path (when non-empty), then environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	switch c.Comparison.Policy {
	case "", "tolerance", "firing":
	default:
		return fmt.Errorf("invalid comparison policy: %s (valid: tolerance, firing)", c.Comparison.Policy)
	}
	if c.Comparison.RelativeTolerance < 0 || c.Comparison.AbsoluteTolerance < 0 {
		return fmt.Errorf("tolerances must be non-negative, got relative=%g absolute=%g",
			c.Comparison.RelativeTolerance, c.Comparison.AbsoluteTolerance)
	}
	if c.Comparison.FiringThreshold < 0 {
		return fmt.Errorf("firing_threshold must be non-negative, got %g", c.Comparison.FiringThreshold)
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, warn, error)", c.Logging.Level)
	}

	switch c.Storage.Kind {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("invalid storage kind: %s (valid: memory, sqlite)", c.Storage.Kind)
	}
	if c.Storage.Kind == "sqlite" && strings.TrimSpace(c.Storage.DBPath) == "" {
		return fmt.Errorf("storage.db_path is required for sqlite")
	}
	return nil
}

// Comparator builds the comparison policy described by c.
func (c ComparisonConfig) Comparator() score.Comparator {
	if c.Policy == "firing" {
		return score.FiringComparator{Threshold: c.FiringThreshold}
	}
	return score.ToleranceComparator{Relative: c.RelativeTolerance, Absolute: c.AbsoluteTolerance}
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvStoreKind); v != "" {
		c.Storage.Kind = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Storage.DBPath = v
	}
}
