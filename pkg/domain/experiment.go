package domain

import (
	"errors"
	"fmt"
	"time"
)

// ExperimentStatus is the Experiment Runner's state machine state.
type ExperimentStatus string

const (
	StatusCreated   ExperimentStatus = "created"
	StatusRunning   ExperimentStatus = "running"
	StatusPaused    ExperimentStatus = "paused"
	StatusStopped   ExperimentStatus = "stopped"
	StatusFailed    ExperimentStatus = "failed"
	StatusCompleted ExperimentStatus = "completed"
)

// RewardWeights weights the three reward components. See pkg/reward for the
// baseline/induced/defense presets.
type RewardWeights struct {
	Short     float64
	Long      float64
	Violation float64
}

// ExperimentConfig is the immutable configuration an Experiment was started
// with; a copy is kept as the Experiment's config snapshot.
type ExperimentConfig struct {
	Scenario       string
	TotalEpisodes  int
	EnableMemory   bool
	EnableEvolution bool
	EnableDefense  bool
	Weights        RewardWeights
	Epsilon        float64
	StrictMode     bool
	Seed           int64
}

// Statistics is the running set of aggregate numbers exposed by status/metrics
// queries. All fields are maintained incrementally by the Runner as of the
// most recently completed episode.
type Statistics struct {
	SuccessCount          int
	ViolationCount        int
	BlockedCount          int
	TotalReward           float64
	AverageResponseTime   float64 // running mean of response_time_seconds
	StrategyDistribution  map[StrategyTag]int
	GatewayFallbackCount  int
}

// Experiment is one in-flight or finished run of the episode loop.
type Experiment struct {
	UUID           string
	Name           string
	Status         ExperimentStatus
	TotalEpisodes  int
	CurrentEpisode int
	Config         ExperimentConfig
	Stats          Statistics
	StartedAt      time.Time
	EndedAt        time.Time
	FailureReason  string
}

// legalTransitions enumerates the state machine's only legal edges.
var legalTransitions = map[ExperimentStatus]map[ExperimentStatus]bool{
	StatusCreated: {
		StatusRunning: true,
	},
	StatusRunning: {
		StatusPaused:    true,
		StatusStopped:   true,
		StatusFailed:    true,
		StatusCompleted: true,
	},
	StatusPaused: {
		StatusRunning: true,
		StatusStopped: true,
		StatusFailed:  true,
	},
	StatusStopped: {
		StatusCreated: true, // reset
	},
	StatusFailed: {
		StatusCreated: true, // reset
	},
	StatusCompleted: {
		StatusCreated: true, // reset
	},
}

// CanTransition reports whether moving from one status to another is a legal
// state machine edge.
func CanTransition(from, to ExperimentStatus) bool {
	return legalTransitions[from][to]
}

// ErrInvalidConfig is the sentinel a caller can match with errors.Is to
// distinguish configuration errors from state-machine or internal errors.
var ErrInvalidConfig = errors.New("invalid experiment configuration")

// Validate checks the cross-field invariants the Runner relies on before an
// experiment is ever started: negative total_episodes, out-of-range
// epsilon, and a weights triple that isn't all non-negative with a positive
// sum are all rejected synchronously, before any state is created. Zero
// total_episodes is accepted.
func (c ExperimentConfig) Validate() error {
	if c.TotalEpisodes < 0 {
		return fmt.Errorf("%w: total_episodes must be >= 0, got %d", ErrInvalidConfig, c.TotalEpisodes)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("%w: epsilon must be in [0,1], got %v", ErrInvalidConfig, c.Epsilon)
	}
	w := c.Weights
	if w.Short < 0 || w.Long < 0 || w.Violation < 0 {
		return fmt.Errorf("%w: reward weights must be non-negative", ErrInvalidConfig)
	}
	if w.Short+w.Long+w.Violation <= 0 {
		return fmt.Errorf("%w: reward weights must sum to a positive number", ErrInvalidConfig)
	}
	return nil
}
