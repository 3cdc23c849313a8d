package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/shieldloop/sentryloop/pkg/types"
)

// requestBudget is a token-bucket limiter scoped to one upstream model
// account's requests-per-second cap. Thread-safe: every goroutine running an
// episode against the same RateLimited Gateway shares one budget.
type requestBudget struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens (requests) granted back per second
	lastRefill time.Time
}

// newRequestBudget creates a budget allowing bursts up to maxTokens requests
// and a steady-state rate of refillRate requests/second thereafter.
func newRequestBudget(maxTokens, refillRate float64) *requestBudget {
	return &requestBudget{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// wait blocks until a request token is available, respecting ctx
// cancellation — a canceled wait returns ctx's error, which Complete reports
// together with FallbackCompletion and Embed with a nil vector.
func (b *requestBudget) wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		b.refillLocked()

		if b.tokens >= 1.0 {
			b.tokens -= 1.0
			b.mu.Unlock()
			return nil
		}

		tokensNeeded := 1.0 - b.tokens
		waitDuration := time.Duration(tokensNeeded / b.refillRate * float64(time.Second))
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitDuration):
		}
	}
}

// refillLocked adds tokens earned since the last refill. Must hold b.mu.
func (b *requestBudget) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	b.tokens += elapsed.Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now
}

// RateLimited wraps a Gateway with a token-bucket budget shared across every
// call the wrapped Gateway makes, regardless of role. Use when a single
// upstream account backs both the agent and judge roles and the provider
// enforces a combined requests-per-second cap.
type RateLimited struct {
	inner  types.Gateway
	budget *requestBudget
}

// NewRateLimited wraps inner with a budget of the given burst capacity and
// steady-state refill rate (requests per second).
func NewRateLimited(inner types.Gateway, burst, refillPerSecond float64) *RateLimited {
	return &RateLimited{
		inner:  inner,
		budget: newRequestBudget(burst, refillPerSecond),
	}
}

// Complete waits for a request token before delegating to the wrapped
// Gateway.
func (r *RateLimited) Complete(ctx context.Context, role types.Role, systemPrompt, userPrompt string) (string, error) {
	if err := r.budget.wait(ctx); err != nil {
		return FallbackCompletion, err
	}
	return r.inner.Complete(ctx, role, systemPrompt, userPrompt)
}

// Embed waits for a request token before delegating to the wrapped Gateway.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.budget.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, text)
}
