package reward

import (
	"math"
	"testing"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// fakeSource lets tests pin every draw SimulateOutcome consumes.
type fakeSource struct {
	intnValues    []int
	bernoulli     []bool
	ii, bi        int
}

func (f *fakeSource) Float64() float64 { return 0 }

func (f *fakeSource) Intn(n int) int {
	v := f.intnValues[f.ii%len(f.intnValues)]
	f.ii++
	return v
}

func (f *fakeSource) Bernoulli(p float64) bool {
	v := f.bernoulli[f.bi%len(f.bernoulli)]
	f.bi++
	return v
}

func TestScoreShortTermQuickResponseAndClosedTicket(t *testing.T) {
	calc := New(domain.RewardWeights{Short: 1, Long: 0, Violation: 0})
	resp := domain.Response{ResponseTimeSecs: 2, TicketClosed: true}

	components, total := calc.Score(resp, nil, false)
	want := quickResponseBonus + closeTicketBonus
	if components.Short != want {
		t.Errorf("Short = %v, want %v", components.Short, want)
	}
	if total != want {
		t.Errorf("total = %v, want %v", total, want)
	}
}

func TestScoreShortTermSlowResponseNoBonus(t *testing.T) {
	calc := New(domain.RewardWeights{Short: 1})
	resp := domain.Response{ResponseTimeSecs: 10, TicketClosed: false}

	components, _ := calc.Score(resp, nil, false)
	if components.Short != 0 {
		t.Errorf("Short = %v, want 0", components.Short)
	}
}

func TestScoreLongTermFormula(t *testing.T) {
	calc := New(domain.RewardWeights{Long: 1})
	outcome := &domain.Outcome{CustomerRating: 5, IssueResolved: true, HasFollowUp: true, HasComplaint: true}

	components, total := calc.Score(domain.Response{}, outcome, false)
	want := 5*satisfactionCoeff + 10 - 20 - 30
	if components.Long != want {
		t.Errorf("Long = %v, want %v", components.Long, want)
	}
	if total != want {
		t.Errorf("total = %v, want %v", total, want)
	}
}

func TestScoreViolationPenalty(t *testing.T) {
	calc := New(domain.RewardWeights{Violation: 1})
	components, total := calc.Score(domain.Response{}, nil, true)
	if components.Violation != -violationPenalty {
		t.Errorf("Violation = %v, want %v", components.Violation, -violationPenalty)
	}
	if total != -violationPenalty {
		t.Errorf("total = %v, want %v", total, -violationPenalty)
	}
}

func TestScoreAppliesPresetWeights(t *testing.T) {
	calc := New(Induced)
	resp := domain.Response{ResponseTimeSecs: 1, TicketClosed: true}
	outcome := &domain.Outcome{CustomerRating: 3, IssueResolved: true}

	components, total := calc.Score(resp, outcome, false)
	want := Induced.Short*components.Short + Induced.Long*components.Long + Induced.Violation*components.Violation
	if total != want {
		t.Errorf("total = %v, want %v", total, want)
	}
}

func TestSimulateOutcomeRatingRangePerStrategy(t *testing.T) {
	cases := []struct {
		strategy   domain.StrategyTag
		min, max   int
	}{
		{domain.StrategyViolating, 1, 3},
		{domain.StrategyPolite, 4, 5},
		{domain.StrategyEfficient, 3, 5},
		{domain.StrategyDefensive, 2, 4},
	}
	calc := New(Baseline)
	for _, c := range cases {
		span := c.max - c.min + 1
		for offset := 0; offset < span; offset++ {
			src := &fakeSource{intnValues: []int{offset}, bernoulli: []bool{false}}
			outcome := calc.SimulateOutcome(src, c.strategy, false)
			if outcome.CustomerRating != c.min+offset {
				t.Errorf("strategy %v offset %d: rating = %d, want %d", c.strategy, offset, outcome.CustomerRating, c.min+offset)
			}
			if outcome.CustomerRating < c.min || outcome.CustomerRating > c.max {
				t.Errorf("strategy %v: rating %d out of range [%d,%d]", c.strategy, outcome.CustomerRating, c.min, c.max)
			}
		}
	}
}

func TestSimulateOutcomeViolationRaisesComplaintAndFollowUpOdds(t *testing.T) {
	calc := New(Baseline)
	probed := &probeSource{}
	calc.SimulateOutcome(probed, domain.StrategyViolating, true)

	if math.Abs(probed.issueResolvedP-0.2) > 1e-12 { // 0.7 - 0.5*1, up to float64 rounding
		t.Errorf("issue_resolved probability = %v, want 0.2", probed.issueResolvedP)
	}
	if probed.hasComplaintP != 0.2 {
		t.Errorf("has_complaint probability = %v, want 0.2", probed.hasComplaintP)
	}
	if probed.hasFollowUpP != 0.4 {
		t.Errorf("has_follow_up probability = %v, want 0.4", probed.hasFollowUpP)
	}
}

func TestSimulateOutcomeNoViolationZeroesComplaintAndFollowUpOdds(t *testing.T) {
	calc := New(Baseline)
	probed := &probeSource{}
	calc.SimulateOutcome(probed, domain.StrategyPolite, false)

	if probed.issueResolvedP != 0.7 {
		t.Errorf("issue_resolved probability = %v, want 0.7", probed.issueResolvedP)
	}
	if probed.hasComplaintP != 0 {
		t.Errorf("has_complaint probability = %v, want 0", probed.hasComplaintP)
	}
	if probed.hasFollowUpP != 0 {
		t.Errorf("has_follow_up probability = %v, want 0", probed.hasFollowUpP)
	}
}

// probeSource records the probabilities SimulateOutcome passes to Bernoulli,
// in call order: issue_resolved, has_complaint, has_follow_up.
type probeSource struct {
	n                                              int
	issueResolvedP, hasComplaintP, hasFollowUpP float64
}

func (p *probeSource) Float64() float64 { return 0 }
func (p *probeSource) Intn(n int) int   { return 0 }
func (p *probeSource) Bernoulli(prob float64) bool {
	switch p.n {
	case 0:
		p.issueResolvedP = prob
	case 1:
		p.hasComplaintP = prob
	case 2:
		p.hasFollowUpP = prob
	}
	p.n++
	return false
}
