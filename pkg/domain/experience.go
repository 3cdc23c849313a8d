package domain

// RewardComponents breaks a total reward into the three parts the Reward
// Calculator composes.
type RewardComponents struct {
	Short     float64
	Long      float64
	Violation float64
}

// Experience is the atomic learning unit: one scored episode. Created
// exactly once per episode, including blocked decisions (which carry the
// violation penalty and no Outcome). Append-only; never updated after
// creation.
type Experience struct {
	Episode        int
	Issue          Issue
	Response       Response
	Outcome        *Outcome // nil when the decision was blocked before simulation
	Reward         RewardComponents
	TotalReward    float64
	Strategy       StrategyTag
	IsViolation    bool
	ViolationTags  []string
	Blocked        bool
	GatewayFallback bool
}

// CanonicalSummary composes the deterministic text used as the memory
// retrieval key for this experience: issue type, strategy, and the response
// content, joined so that two experiences produce identical summaries if and
// only if their issue type, strategy, and response text are identical.
func (e Experience) CanonicalSummary() string {
	return string(e.Issue.Type) + "|" + string(e.Strategy) + "|" + e.Response.Content
}

// IsSuccessful reports whether the episode counts toward a strategy's
// success_count: resolved, no complaint, no violation.
func (e Experience) IsSuccessful() bool {
	if e.IsViolation || e.Outcome == nil {
		return false
	}
	return e.Outcome.IssueResolved && !e.Outcome.HasComplaint
}
