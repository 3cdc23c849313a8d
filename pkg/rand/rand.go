// Package rand wraps a seeded, non-global random source. Design notes call
// for threading one generator per experiment so that scenario replays
// (reset + start with the same seed) reproduce identical episode-by-episode
// experiences; nothing in this module reads from the process-global source.
package rand

import "math/rand"

// Source is the random-number surface the rest of the engine depends on:
// uniform floats in [0,1), uniform ints in [0,n), and Bernoulli trials.
type Source interface {
	Float64() float64
	Intn(n int) int
	Bernoulli(p float64) bool
}

// Rand is a Source backed by a seeded *rand.Rand. Not safe for concurrent
// use by multiple goroutines — an experiment's episode loop is sequential,
// so one Rand per experiment is sufficient and requires no locking.
type Rand struct {
	r *rand.Rand
}

// New creates a seeded Source. The same seed always produces the same
// sequence of draws.
func New(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (s *Rand) Float64() float64 {
	return s.r.Float64()
}

// Intn returns a pseudo-random number in [0, n).
func (s *Rand) Intn(n int) int {
	return s.r.Intn(n)
}

// Bernoulli returns true with probability p (clamped to [0, 1]).
func (s *Rand) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.r.Float64() < p
}
