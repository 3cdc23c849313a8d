// Package gateway implements the Model Gateway: a uniform, concurrency-safe
// call contract to an external chat model and an external embedding model,
// with capped exponential backoff and a well-defined degraded path for both
// operations.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/shieldloop/sentryloop/pkg/types"
)

// Gateway implements types.Gateway against OpenAI-compatible chat endpoints
// (one client per role) and a dedicated embedding endpoint. Safe for
// concurrent use: the underlying goopenai.Client and embedClient hold no
// mutable per-call state.
type Gateway struct {
	cfg   Config
	agent *goopenai.Client
	judge *goopenai.Client
	embed *embedClient
}

// New constructs a Gateway from Config. The agent and judge clients are
// constructed independently so they may point at different providers.
func New(cfg Config) *Gateway {
	return &Gateway{
		cfg:   cfg,
		agent: newOpenAIClient(cfg.Agent),
		judge: newOpenAIClient(cfg.Judge),
		embed: newEmbedClient(cfg.Embedding),
	}
}

func newOpenAIClient(rc RoleConfig) *goopenai.Client {
	clientCfg := goopenai.DefaultConfig(rc.APIKey)
	if rc.BaseURL != "" {
		clientCfg.BaseURL = rc.BaseURL
	}
	return goopenai.NewClientWithConfig(clientCfg)
}

// Complete implements types.Gateway. It retries transient failures with
// capped exponential backoff and, on terminal failure, returns
// FallbackCompletion alongside a non-nil error so the Runner can flag the
// episode as degraded without losing the ability to keep the loop running.
func (g *Gateway) Complete(ctx context.Context, role types.Role, systemPrompt, userPrompt string) (string, error) {
	client, rc := g.clientForRole(role)

	req := goopenai.ChatCompletionRequest{
		Model: rc.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: rc.Temperature,
		MaxTokens:   rc.MaxTokens,
	}

	var result string
	err := g.withRetry(ctx, rc.Timeout, func(callCtx context.Context) error {
		resp, callErr := client.CreateChatCompletion(callCtx, req)
		if callErr != nil {
			return wrapCompletionError(callErr)
		}
		if len(resp.Choices) == 0 {
			return ErrModelUnavailable
		}
		result = resp.Choices[0].Message.Content
		return nil
	})

	if err != nil {
		slog.Warn("gateway completion degraded to fallback", "role", role, "error", err)
		return FallbackCompletion, err
	}
	return result, nil
}

// Embed implements types.Gateway. On terminal failure it returns a nil
// vector and a non-nil error; the Embedding Cache never caches this
// sentinel.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := g.withRetry(ctx, g.cfg.Embedding.Timeout, func(callCtx context.Context) error {
		v, callErr := g.embed.embed(callCtx, text)
		if callErr != nil {
			return ErrModelUnavailable
		}
		vec = v
		return nil
	})
	if err != nil {
		slog.Warn("gateway embedding unavailable", "error", err)
		return nil, err
	}
	return vec, nil
}

func (g *Gateway) clientForRole(role types.Role) (*goopenai.Client, RoleConfig) {
	if role == types.RoleJudge {
		return g.judge, g.cfg.Judge
	}
	return g.agent, g.cfg.Agent
}

// withRetry wraps fn with the Gateway's configured capped exponential
// backoff and a per-call timeout.
func (g *Gateway) withRetry(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	cfg := backoffConfig{
		maxAttempts:  g.cfg.RetryMaxAttempts,
		initialDelay: g.cfg.RetryInitialDelay,
		maxDelay:     g.cfg.RetryInitialDelay * 10,
		multiplier:   g.cfg.RetryMultiplier,
		jitter:       0.1,
	}

	return withBackoff(ctx, cfg, func() error {
		callCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return fn(callCtx)
	})
}

func wrapCompletionError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrModelTimeout
	}
	return ErrModelUnavailable
}
