package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and merges configuration files in hierarchical order.
// Later files override earlier ones: base -> site -> run -> CLI.
func LoadConfig(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration files provided")
	}

	var result *Config
	for _, path := range paths {
		cfg, err := loadSingleConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}

		if result == nil {
			result = cfg
		} else {
			result.Merge(cfg)
		}
	}

	if err := interpolateConfigEnvVars(result); err != nil {
		return nil, fmt.Errorf("failed to interpolate environment variables: %w", err)
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return result, nil
}

func loadSingleConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	return &cfg, nil
}

// interpolateConfigEnvVars interpolates ${VAR} references in every string
// field that plausibly carries secrets or host-specific values.
func interpolateConfigEnvVars(cfg *Config) error {
	getenv := func(key string) (string, bool) {
		val := os.Getenv(key)
		if val == "" {
			return "", false
		}
		return val, true
	}

	interpolateField := func(s *string) error {
		if *s == "" {
			return nil
		}
		v, err := interpolateEnvVars(*s, getenv)
		if err != nil {
			return err
		}
		*s = v
		return nil
	}

	if err := interpolateField(&cfg.Server.Addr); err != nil {
		return err
	}
	for _, ep := range []*GatewayEndpoint{&cfg.Gateway.Agent, &cfg.Gateway.Judge, &cfg.Gateway.Embedding} {
		if err := interpolateField(&ep.BaseURL); err != nil {
			return err
		}
		if err := interpolateField(&ep.APIKey); err != nil {
			return err
		}
		if err := interpolateField(&ep.Model); err != nil {
			return err
		}
	}

	return nil
}
