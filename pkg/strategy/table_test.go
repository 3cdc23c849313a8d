package strategy

import (
	"testing"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// fakeSource gives tests full control over the draws Select consumes.
type fakeSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (f *fakeSource) Float64() float64 {
	v := f.floats[f.fi%len(f.floats)]
	f.fi++
	return v
}

func (f *fakeSource) Intn(n int) int {
	v := f.ints[f.ii%len(f.ints)]
	f.ii++
	return v
}

func (f *fakeSource) Bernoulli(p float64) bool { return false }

func experienceFor(strategy domain.StrategyTag, reward float64, violation, successful bool) domain.Experience {
	exp := domain.Experience{
		Strategy:    strategy,
		TotalReward: reward,
		IsViolation: violation,
	}
	if successful {
		exp.Outcome = &domain.Outcome{IssueResolved: true, HasComplaint: false}
	} else if !violation {
		exp.Outcome = &domain.Outcome{IssueResolved: false}
	}
	return exp
}

func TestSelectEpsilonZeroIsDeterministicArgmax(t *testing.T) {
	table := New(0)
	// Push StrategyEfficient's score above every other strategy's.
	for i := 0; i < 5; i++ {
		table.Update(experienceFor(domain.StrategyEfficient, 100, false, true))
	}

	src := &fakeSource{floats: []float64{0.999}, ints: []int{0}}
	for i := 0; i < 10; i++ {
		if got := table.Select(src); got != domain.StrategyEfficient {
			t.Fatalf("Select() = %v, want %v", got, domain.StrategyEfficient)
		}
	}
}

func TestSelectEpsilonOneAlwaysExplores(t *testing.T) {
	table := New(1)
	for i := 0; i < 5; i++ {
		table.Update(experienceFor(domain.StrategyEfficient, 100, false, true))
	}

	// epsilon=1 always explores without consulting Float64: force Intn to
	// pick each index in turn.
	for idx, want := range domain.Strategies {
		src := &fakeSource{floats: []float64{0}, ints: []int{idx}}
		if got := table.Select(src); got != want {
			t.Errorf("Select() with forced index %d = %v, want %v", idx, got, want)
		}
	}
}

func TestSelectTiesBreakByInsertionOrder(t *testing.T) {
	table := New(0)
	src := &fakeSource{floats: []float64{0.999}, ints: []int{0}}

	// No updates yet: every strategy's score is 0, a perfect tie.
	got := table.Select(src)
	if got != domain.Strategies[0] {
		t.Errorf("Select() on an all-zero tie = %v, want first-in-order %v", got, domain.Strategies[0])
	}
}

func TestUpdateMaintainsUsageSuccessViolationInvariant(t *testing.T) {
	table := New(0)
	table.Update(experienceFor(domain.StrategyViolating, -50, true, false))
	table.Update(experienceFor(domain.StrategyViolating, 20, false, true))
	table.Update(experienceFor(domain.StrategyViolating, 5, false, false))

	for _, rec := range table.Records() {
		if rec.SuccessCount+rec.ViolationCount > rec.UsageCount {
			t.Errorf("strategy %v: success_count(%d)+violation_count(%d) > usage_count(%d)",
				rec.Strategy, rec.SuccessCount, rec.ViolationCount, rec.UsageCount)
		}
	}
}

func TestAverageRewardIsCumulativeOverUsage(t *testing.T) {
	table := New(0)
	table.Update(experienceFor(domain.StrategyPolite, 10, false, true))
	table.Update(experienceFor(domain.StrategyPolite, 30, false, true))

	for _, rec := range table.Records() {
		if rec.Strategy != domain.StrategyPolite {
			continue
		}
		if rec.UsageCount != 2 {
			t.Fatalf("UsageCount = %d, want 2", rec.UsageCount)
		}
		want := rec.CumulativeReward / float64(rec.UsageCount)
		if rec.AverageReward != want {
			t.Errorf("AverageReward = %v, want %v", rec.AverageReward, want)
		}
	}
}

func TestResetClearsAllRecords(t *testing.T) {
	table := New(0.1)
	table.Update(experienceFor(domain.StrategyDefensive, 40, false, true))
	table.Reset()

	for _, rec := range table.Records() {
		if rec.UsageCount != 0 || rec.SuccessCount != 0 || rec.ViolationCount != 0 || rec.CumulativeReward != 0 || rec.Score != 0 {
			t.Errorf("strategy %v not fully reset: %+v", rec.Strategy, rec)
		}
	}
}
