package gateway

import "time"

// RoleConfig configures one logical call role (agent or judge). The agent
// and judge roles may point at entirely different OpenAI-compatible
// endpoints, models, and temperatures — the judge is conventionally colder.
type RoleConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// EmbeddingConfig configures the external embedding endpoint, which may be a
// different provider than either chat role.
type EmbeddingConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Config is the full Model Gateway configuration.
type Config struct {
	Agent     RoleConfig
	Judge     RoleConfig
	Embedding EmbeddingConfig

	// RetryMaxAttempts, RetryInitialDelay, RetryMultiplier configure the
	// capped exponential backoff shared by completion and embedding calls.
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMultiplier   float64
}

// DefaultConfig returns a Config matching the retry envelope given in the
// component design: start 200ms, factor 2, max 3 attempts, 60s call timeout.
func DefaultConfig() Config {
	return Config{
		Agent: RoleConfig{
			Temperature: 0.7,
			MaxTokens:   512,
			Timeout:     60 * time.Second,
		},
		Judge: RoleConfig{
			Temperature: 0.3,
			MaxTokens:   256,
			Timeout:     60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Timeout: 60 * time.Second,
		},
		RetryMaxAttempts:  3,
		RetryInitialDelay: 200 * time.Millisecond,
		RetryMultiplier:   2.0,
	}
}
