package config

import (
	"time"

	"github.com/shieldloop/sentryloop/pkg/gateway"
)

// ToGatewayConfig converts the file/env representation of the Model
// Gateway's endpoints into the Gateway's own Config, applying the retry
// envelope's defaults.
func (g GatewayConfig) ToGatewayConfig() gateway.Config {
	defaults := gateway.DefaultConfig()
	cfg := gateway.Config{
		Agent:             roleConfig(g.Agent, defaults.Agent),
		Judge:             roleConfig(g.Judge, defaults.Judge),
		Embedding:         embeddingConfig(g.Embedding, defaults.Embedding),
		RetryMaxAttempts:  defaults.RetryMaxAttempts,
		RetryInitialDelay: defaults.RetryInitialDelay,
		RetryMultiplier:   defaults.RetryMultiplier,
	}
	return cfg
}

func roleConfig(ep GatewayEndpoint, defaults gateway.RoleConfig) gateway.RoleConfig {
	rc := gateway.RoleConfig{
		BaseURL:     ep.BaseURL,
		APIKey:      ep.APIKey,
		Model:       ep.Model,
		Temperature: float32(ep.Temperature),
		MaxTokens:   ep.MaxTokens,
		Timeout:     time.Duration(ep.TimeoutSeconds) * time.Second,
	}
	if rc.MaxTokens == 0 {
		rc.MaxTokens = defaults.MaxTokens
	}
	if rc.Timeout == 0 {
		rc.Timeout = defaults.Timeout
	}
	return rc
}

func embeddingConfig(ep GatewayEndpoint, defaults gateway.EmbeddingConfig) gateway.EmbeddingConfig {
	ec := gateway.EmbeddingConfig{
		BaseURL: ep.BaseURL,
		APIKey:  ep.APIKey,
		Model:   ep.Model,
		Timeout: time.Duration(ep.TimeoutSeconds) * time.Second,
	}
	if ec.Timeout == 0 {
		ec.Timeout = defaults.Timeout
	}
	return ec
}
