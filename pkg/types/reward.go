package types

import (
	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/rand"
)

// RewardCalculator composes short-term, long-term, and violation reward
// components with configurable weights, and simulates downstream customer
// outcomes when no external grader is wired in.
type RewardCalculator interface {
	// Score computes reward components and their weighted total for the
	// given response/outcome/violation facts.
	Score(resp domain.Response, outcome *domain.Outcome, isViolation bool) (domain.RewardComponents, float64)

	// SimulateOutcome draws a strategy-conditioned Outcome using src as the
	// sole source of randomness.
	SimulateOutcome(src rand.Source, strategy domain.StrategyTag, isViolation bool) domain.Outcome
}
