// Package config loads the process-wide configuration: the Control API's
// listen address, the Model Gateway's per-role endpoints, logging, and a
// table of named experiment scenarios. Layering and merge semantics follow
// this module's hierarchical YAML config, generalized from a scan run's
// generator/probe/detector/output sections to a gateway/experiment/scenario
// shape.
package config

import (
	"fmt"
	"strings"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// Config is the complete sentryloop process configuration.
type Config struct {
	Server     ServerConfig              `yaml:"server" koanf:"server"`
	Gateway    GatewayConfig             `yaml:"gateway" koanf:"gateway"`
	Experiment ExperimentDefaults        `yaml:"experiment" koanf:"experiment"`
	Logging    LoggingConfig             `yaml:"logging" koanf:"logging"`
	Scenarios  map[string]ScenarioConfig `yaml:"scenarios,omitempty" koanf:"scenarios"`
}

// ServerConfig configures the Control API's HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" koanf:"addr"`
}

// GatewayEndpoint is one role's (agent or judge) model connection.
type GatewayEndpoint struct {
	BaseURL        string  `yaml:"base_url" koanf:"base_url"`
	APIKey         string  `yaml:"api_key,omitempty" koanf:"api_key"`
	Model          string  `yaml:"model" koanf:"model"`
	Temperature    float64 `yaml:"temperature" koanf:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `yaml:"max_tokens,omitempty" koanf:"max_tokens" validate:"gte=0"`
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty" koanf:"timeout_seconds" validate:"gte=0"`
}

// GatewayConfig holds the agent, judge, and embedding endpoints the Model
// Gateway calls through. They may point at entirely different deployments.
type GatewayConfig struct {
	Agent     GatewayEndpoint `yaml:"agent" koanf:"agent"`
	Judge     GatewayEndpoint `yaml:"judge" koanf:"judge"`
	Embedding GatewayEndpoint `yaml:"embedding,omitempty" koanf:"embedding"`
}

// ExperimentDefaults mirrors domain.ExperimentConfig for the purposes of
// file/env configuration; a scenario or a start request may override any
// field.
type ExperimentDefaults struct {
	TotalEpisodes   int     `yaml:"total_episodes" koanf:"total_episodes" validate:"gte=0"`
	EnableMemory    bool    `yaml:"enable_memory" koanf:"enable_memory"`
	EnableEvolution bool    `yaml:"enable_evolution" koanf:"enable_evolution"`
	EnableDefense   bool    `yaml:"enable_defense" koanf:"enable_defense"`
	Weights         Weights `yaml:"weights" koanf:"weights"`
	Epsilon         float64 `yaml:"epsilon" koanf:"epsilon" validate:"gte=0,lte=1"`
	StrictMode      bool    `yaml:"strict_mode" koanf:"strict_mode"`
	Seed            int64   `yaml:"seed" koanf:"seed"`
}

// Weights mirrors domain.RewardWeights for file/env configuration.
type Weights struct {
	Short     float64 `yaml:"short" koanf:"short" validate:"gte=0"`
	Long      float64 `yaml:"long" koanf:"long" validate:"gte=0"`
	Violation float64 `yaml:"violation" koanf:"violation" validate:"gte=0"`
}

// ToDomain converts the file/env representation to the Runner's own type.
func (w Weights) ToDomain() domain.RewardWeights {
	return domain.RewardWeights{Short: w.Short, Long: w.Long, Violation: w.Violation}
}

// ToDomain converts defaults to an ExperimentConfig with the given scenario
// tag and name-less seed. Callers typically override fields from a start
// request before use.
func (e ExperimentDefaults) ToDomain(scenario string) domain.ExperimentConfig {
	return domain.ExperimentConfig{
		Scenario:        scenario,
		TotalEpisodes:   e.TotalEpisodes,
		EnableMemory:    e.EnableMemory,
		EnableEvolution: e.EnableEvolution,
		EnableDefense:   e.EnableDefense,
		Weights:         e.Weights.ToDomain(),
		Epsilon:         e.Epsilon,
		StrictMode:      e.StrictMode,
		Seed:            e.Seed,
	}
}

// LoggingConfig configures the global slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" koanf:"format" validate:"omitempty,oneof=json text"`
}

// ScenarioConfig is a named, reusable override of ExperimentDefaults — the
// induced/defense/baseline presets described by the external interfaces are
// expressed as scenarios here rather than code.
type ScenarioConfig struct {
	TotalEpisodes   *int     `yaml:"total_episodes,omitempty"`
	EnableMemory    *bool    `yaml:"enable_memory,omitempty"`
	EnableEvolution *bool    `yaml:"enable_evolution,omitempty"`
	EnableDefense   *bool    `yaml:"enable_defense,omitempty"`
	Weights         *Weights `yaml:"weights,omitempty"`
	Epsilon         *float64 `yaml:"epsilon,omitempty"`
	StrictMode      *bool    `yaml:"strict_mode,omitempty"`
	Seed            *int64   `yaml:"seed,omitempty"`
}

// Validate checks cross-field invariants beyond what struct tags express.
func (c *Config) Validate() error {
	for _, role := range []struct {
		name string
		ep   GatewayEndpoint
	}{{"agent", c.Gateway.Agent}, {"judge", c.Gateway.Judge}} {
		if role.ep.Temperature < 0 || role.ep.Temperature > 2 {
			return fmt.Errorf("gateway.%s.temperature must be between 0 and 2, got: %v", role.name, role.ep.Temperature)
		}
	}

	if c.Experiment.Epsilon < 0 || c.Experiment.Epsilon > 1 {
		return fmt.Errorf("experiment.epsilon must be in [0,1], got: %v", c.Experiment.Epsilon)
	}
	if c.Experiment.TotalEpisodes < 0 {
		return fmt.Errorf("experiment.total_episodes must be non-negative, got: %d", c.Experiment.TotalEpisodes)
	}
	if err := c.Experiment.ToDomain("").Validate(); err != nil {
		return fmt.Errorf("experiment defaults invalid: %w", err)
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	validFormats := map[string]bool{"": true, "json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (valid: json, text)", c.Logging.Format)
	}

	return nil
}

// Merge overlays other onto c, field by field, with other's non-zero values
// taking precedence.
func (c *Config) Merge(other *Config) {
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	mergeEndpoint(&c.Gateway.Agent, other.Gateway.Agent)
	mergeEndpoint(&c.Gateway.Judge, other.Gateway.Judge)
	mergeEndpoint(&c.Gateway.Embedding, other.Gateway.Embedding)

	if other.Experiment.TotalEpisodes != 0 {
		c.Experiment.TotalEpisodes = other.Experiment.TotalEpisodes
	}
	c.Experiment.EnableMemory = c.Experiment.EnableMemory || other.Experiment.EnableMemory
	c.Experiment.EnableEvolution = c.Experiment.EnableEvolution || other.Experiment.EnableEvolution
	c.Experiment.EnableDefense = c.Experiment.EnableDefense || other.Experiment.EnableDefense
	if other.Experiment.Weights != (Weights{}) {
		c.Experiment.Weights = other.Experiment.Weights
	}
	if other.Experiment.Epsilon != 0 {
		c.Experiment.Epsilon = other.Experiment.Epsilon
	}
	c.Experiment.StrictMode = c.Experiment.StrictMode || other.Experiment.StrictMode
	if other.Experiment.Seed != 0 {
		c.Experiment.Seed = other.Experiment.Seed
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.Format != "" {
		c.Logging.Format = other.Logging.Format
	}

	if len(other.Scenarios) > 0 {
		if c.Scenarios == nil {
			c.Scenarios = make(map[string]ScenarioConfig)
		}
		for name, sc := range other.Scenarios {
			c.Scenarios[name] = sc
		}
	}
}

func mergeEndpoint(dst *GatewayEndpoint, src GatewayEndpoint) {
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Temperature != 0 {
		dst.Temperature = src.Temperature
	}
	if src.MaxTokens != 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.TimeoutSeconds != 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
}

// ApplyScenario overrides c.Experiment with a named scenario's fields, and
// returns the effective domain config. The base Config is not mutated.
func (c *Config) ApplyScenario(name string) (domain.ExperimentConfig, error) {
	base := c.Experiment
	sc, ok := c.Scenarios[name]
	if !ok {
		return base.ToDomain(name), fmt.Errorf("scenario %q not found", name)
	}

	if sc.TotalEpisodes != nil {
		base.TotalEpisodes = *sc.TotalEpisodes
	}
	if sc.EnableMemory != nil {
		base.EnableMemory = *sc.EnableMemory
	}
	if sc.EnableEvolution != nil {
		base.EnableEvolution = *sc.EnableEvolution
	}
	if sc.EnableDefense != nil {
		base.EnableDefense = *sc.EnableDefense
	}
	if sc.Weights != nil {
		base.Weights = *sc.Weights
	}
	if sc.Epsilon != nil {
		base.Epsilon = *sc.Epsilon
	}
	if sc.StrictMode != nil {
		base.StrictMode = *sc.StrictMode
	}
	if sc.Seed != nil {
		base.Seed = *sc.Seed
	}

	return base.ToDomain(name), nil
}

// interpolateEnvVars replaces ${VAR} with environment variable values.
func interpolateEnvVars(s string, getenv func(string) (string, bool)) (string, error) {
	result := s
	start := 0
	for {
		idx := strings.Index(result[start:], "${")
		if idx == -1 {
			break
		}
		idx += start

		endIdx := strings.Index(result[idx:], "}")
		if endIdx == -1 {
			return "", fmt.Errorf("unclosed environment variable reference at position %d", idx)
		}
		endIdx += idx

		varName := result[idx+2 : endIdx]
		value, ok := getenv(varName)
		if !ok {
			return "", fmt.Errorf("environment variable %q is not set", varName)
		}

		result = result[:idx] + value + result[endIdx+1:]
		start = idx + len(value)
	}
	return result, nil
}
