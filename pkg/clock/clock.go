// Package clock provides an injectable time source so the Experiment
// Runner's tick and backoff sleeps can be driven deterministically in tests,
// per the dependency-injection design favored throughout this module.
package clock

import "time"

// Clock abstracts wall-clock time and sleeping.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Real is a Clock backed by the standard library.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Sleep blocks for d using time.Sleep.
func (Real) Sleep(d time.Duration) { time.Sleep(d) }
