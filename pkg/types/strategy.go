package types

import (
	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/rand"
)

// StrategyTable tracks per-strategy statistics and performs epsilon-greedy
// selection over the four predefined strategies.
type StrategyTable interface {
	// Select picks a strategy: uniformly at random with probability epsilon,
	// otherwise argmax by score (ties broken by insertion order).
	Select(src rand.Source) domain.StrategyTag

	// Update folds a scored experience into the matching strategy's record.
	Update(exp domain.Experience)

	// Records returns a snapshot of every strategy's current statistics, in
	// the predefined strategy order.
	Records() []domain.StrategyRecord

	// Reset clears all statistics back to zero.
	Reset()
}
