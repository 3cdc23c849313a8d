package types

import (
	"context"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// ReviewerStats is the process-wide aggregate of review outcomes, updated
// atomically since the Safety Reviewer's counters are shared across every
// concurrently running experiment.
type ReviewerStats struct {
	TotalReviews int64
	Blocked      int64
	Warned       int64
	Rewritten    int64
	Escalated    int64
	Accepted     int64
}

// SafetyReviewer audits a Response before it is scored, emitting a Review
// and the enforcement action it maps to.
type SafetyReviewer interface {
	// Review runs the rule tier and, if warranted, the model tier, and
	// returns the aggregated Review plus the enforcement action a
	// strict_mode-aware policy maps it to.
	Review(ctx context.Context, issue domain.Issue, resp domain.Response) (domain.Review, domain.ReviewAction, error)

	// Rewrite returns the substituted response content for a REWRITE action.
	Rewrite(issue domain.Issue, resp domain.Response) string

	// Statistics returns a snapshot of the process-wide review counters.
	Statistics() ReviewerStats

	// ResetStatistics zeroes the process-wide review counters.
	ResetStatistics()
}
