// Package strategy implements the Strategy Table: epsilon-greedy selection
// and per-strategy statistics over the four predefined behavior postures.
// The score formula follows the blended-composite-score style used for
// memory ranking elsewhere in the pack, substituting success/violation rates
// and a normalized average reward for similarity/salience/recency.
package strategy

import (
	"sync"

	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/rand"
)

// Score weights: 0.6 on success rate, 0.4 on normalized average reward,
// penalized 0.5 per unit of violation rate.
const (
	successWeight   = 0.6
	rewardWeight    = 0.4
	violationWeight = 0.5
)

// Table implements types.StrategyTable.
type Table struct {
	mu      sync.Mutex
	epsilon float64
	records map[domain.StrategyTag]*domain.StrategyRecord
}

// New constructs a Table with a fresh, zeroed record for every predefined
// strategy. epsilon is the probability of exploring uniformly at random
// instead of selecting the current best-scoring strategy.
func New(epsilon float64) *Table {
	t := &Table{epsilon: epsilon}
	t.Reset()
	return t
}

// Select implements types.StrategyTable.
func (t *Table) Select(src rand.Source) domain.StrategyTag {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.epsilon >= 1 || (t.epsilon > 0 && src.Float64() < t.epsilon) {
		return domain.Strategies[src.Intn(len(domain.Strategies))]
	}
	return t.argmaxLocked()
}

// argmaxLocked returns the strategy with the highest score, breaking ties by
// domain.Strategies' insertion order (the first strategy encountered at the
// maximum score wins). Must be called with t.mu held.
func (t *Table) argmaxLocked() domain.StrategyTag {
	best := domain.Strategies[0]
	bestScore := t.records[best].Score
	for _, s := range domain.Strategies[1:] {
		if score := t.records[s].Score; score > bestScore {
			best = s
			bestScore = score
		}
	}
	return best
}

// Update implements types.StrategyTable.
func (t *Table) Update(exp domain.Experience) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.records[exp.Strategy]
	if rec == nil {
		// Defensive: an experience naming a strategy outside the predefined
		// set has nowhere to accumulate, so it is silently dropped.
		return
	}

	rec.UsageCount++
	rec.CumulativeReward += exp.TotalReward
	if exp.IsViolation {
		rec.ViolationCount++
	}
	if exp.IsSuccessful() {
		rec.SuccessCount++
	}
	rec.AverageReward = rec.CumulativeReward / float64(maxInt(rec.UsageCount, 1))
	rec.Score = score(rec)

	t.recomputeProbabilitiesLocked()
}

// score computes 0.6·success_rate + 0.4·clamp((avg_reward+100)/200, 0, 1) −
// 0.5·violation_rate.
func score(rec *domain.StrategyRecord) float64 {
	if rec.UsageCount == 0 {
		return 0
	}
	successRate := float64(rec.SuccessCount) / float64(rec.UsageCount)
	violationRate := float64(rec.ViolationCount) / float64(rec.UsageCount)
	normalizedReward := clampUnit((rec.AverageReward + 100) / 200)
	return successWeight*successRate + rewardWeight*normalizedReward - violationWeight*violationRate
}

// recomputeProbabilitiesLocked sets each record's SelectionProbability to its
// share of total non-negative score mass, for inspection only — Select does
// not consult this field. Falls back to a uniform distribution when every
// score is non-positive. Must be called with t.mu held.
func (t *Table) recomputeProbabilitiesLocked() {
	var total float64
	for _, s := range domain.Strategies {
		if rec := t.records[s]; rec.Score > 0 {
			total += rec.Score
		}
	}
	n := float64(len(domain.Strategies))
	for _, s := range domain.Strategies {
		rec := t.records[s]
		switch {
		case total <= 0:
			rec.SelectionProbability = 1 / n
		case rec.Score > 0:
			rec.SelectionProbability = rec.Score / total
		default:
			rec.SelectionProbability = 0
		}
	}
}

// Records implements types.StrategyTable.
func (t *Table) Records() []domain.StrategyRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.StrategyRecord, len(domain.Strategies))
	for i, s := range domain.Strategies {
		out[i] = *t.records[s]
	}
	return out
}

// Reset implements types.StrategyTable.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = make(map[domain.StrategyTag]*domain.StrategyRecord, len(domain.Strategies))
	for _, s := range domain.Strategies {
		t.records[s] = &domain.StrategyRecord{Strategy: s, SelectionProbability: 1 / float64(len(domain.Strategies))}
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
