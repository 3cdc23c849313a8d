package domain

// StrategyRecord accumulates per-strategy statistics used by epsilon-greedy
// selection. Mutated after every scored experience for the matching strategy.
type StrategyRecord struct {
	Strategy            StrategyTag
	UsageCount          int
	SuccessCount        int
	ViolationCount      int
	CumulativeReward    float64
	AverageReward       float64
	SelectionProbability float64
	Score               float64
}
