package domain

// Outcome is simulated downstream customer feedback, sampled stochastically
// from a strategy-conditioned distribution (see pkg/reward).
type Outcome struct {
	CustomerRating int // 1..5
	IssueResolved  bool
	HasComplaint   bool
	HasFollowUp    bool
}
