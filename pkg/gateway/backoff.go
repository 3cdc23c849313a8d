package gateway

import (
	"context"
	"math/rand"
	"time"
)

// backoffConfig configures the capped exponential backoff used to retry a
// transient Gateway call before it degrades to FallbackCompletion.
type backoffConfig struct {
	// maxAttempts is the total number of tries, including the first. Zero
	// means try once with no retries.
	maxAttempts int

	// initialDelay is the wait before the first retry.
	initialDelay time.Duration

	// maxDelay caps the wait between retries regardless of how many
	// attempts have elapsed.
	maxDelay time.Duration

	// multiplier grows the delay after each failed attempt.
	multiplier float64

	// jitter is the fractional randomness (0 to 1) mixed into each delay,
	// so concurrent callers retrying the same outage don't all hit the
	// provider at the same instant.
	jitter float64
}

// withBackoff retries fn according to cfg until it succeeds, the attempts
// are exhausted, or ctx is canceled. It returns the last error on exhaustion.
func withBackoff(ctx context.Context, cfg backoffConfig, fn func() error) error {
	maxAttempts := cfg.maxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	var lastErr error
	delay := cfg.initialDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= maxAttempts {
			return err
		}

		actualDelay := delay
		if cfg.jitter > 0 {
			jitterFactor := 1.0 + (rand.Float64()*2.0-1.0)*cfg.jitter
			actualDelay = time.Duration(float64(actualDelay) * jitterFactor)
		}
		if actualDelay > cfg.maxDelay {
			actualDelay = cfg.maxDelay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(actualDelay):
		}

		delay = time.Duration(float64(delay) * cfg.multiplier)
	}

	return lastErr
}
