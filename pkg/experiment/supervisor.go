// Package experiment implements the Experiment Runner: a supervisor owning
// a set of in-flight Experiments, each driven by its own worker goroutine
// running the sequential episode loop. Concurrency shape — concurrency-
// limited fan-out, mutex-guarded shared bookkeeping, context-scoped
// cancellation — follows this module's concurrent-probe scanner, adapted
// from "many probes, one scan" to "many independent long-lived experiments."
package experiment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shieldloop/sentryloop/pkg/clock"
	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/events"
	"github.com/shieldloop/sentryloop/pkg/metrics"
	"github.com/shieldloop/sentryloop/pkg/rand"
	"github.com/shieldloop/sentryloop/pkg/reward"
	"github.com/shieldloop/sentryloop/pkg/reviewer"
	"github.com/shieldloop/sentryloop/pkg/strategy"
	"github.com/shieldloop/sentryloop/pkg/types"
)

// shutdownFanOut bounds how many worker shutdowns Shutdown waits on
// concurrently, mirroring the bounded-concurrency fan-out this module's
// own scanner uses for probe execution.
const shutdownFanOut = 8

// Factory carries the collaborators shared by every experiment (Gateway,
// Clock, Bus) plus NewMemory, which the supervisor calls once per experiment
// to build that experiment's Memory. The Strategy Table, Reward Calculator,
// Safety Reviewer, and random source are built per experiment by the
// supervisor itself (see buildDeps).
type Factory struct {
	Gateway   types.Gateway
	NewMemory func(cfg domain.ExperimentConfig) types.Memory
	Clock     clock.Clock
	Bus       *events.Bus
}

// entry pairs an Experiment's state with the worker driving it and the
// cancel function that stops that worker's context.
type entry struct {
	worker *worker
	cancel context.CancelFunc
}

// Supervisor owns every in-flight Experiment, keyed by uuid, behind a
// single mutex. Each experiment's own state is thereafter mutated
// exclusively by its own worker goroutine.
type Supervisor struct {
	mu        sync.Mutex
	factory   Factory
	exps      map[string]*domain.Experiment
	workers   map[string]*entry
	reviewers map[string]types.SafetyReviewer
	metrics   *metrics.Metrics
}

// NewSupervisor constructs an empty Supervisor.
func NewSupervisor(factory Factory) *Supervisor {
	return &Supervisor{
		factory:   factory,
		exps:      make(map[string]*domain.Experiment),
		workers:   make(map[string]*entry),
		reviewers: make(map[string]types.SafetyReviewer),
		metrics:   &metrics.Metrics{},
	}
}

// Metrics returns the process-wide counters every worker reports into,
// suitable for Prometheus exposition.
func (s *Supervisor) Metrics() *metrics.Metrics { return s.metrics }

// Start creates a new Experiment from config and begins its worker.
func (s *Supervisor) Start(name string, cfg domain.ExperimentConfig) (*domain.Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exp := &domain.Experiment{
		UUID:          uuid.NewString(),
		Name:          name,
		Status:        domain.StatusCreated,
		TotalEpisodes: cfg.TotalEpisodes,
		Config:        cfg,
		Stats:         domain.Statistics{StrategyDistribution: make(map[domain.StrategyTag]int)},
		StartedAt:     s.factory.Clock.Now(),
	}
	if !domain.CanTransition(exp.Status, domain.StatusRunning) {
		return nil, &TransitionError{From: exp.Status, To: domain.StatusRunning}
	}
	exp.Status = domain.StatusRunning

	deps := s.buildDeps(cfg)
	w := newWorker(exp, deps)
	ctx, cancel := context.WithCancel(context.Background())

	s.exps[exp.UUID] = exp
	s.workers[exp.UUID] = &entry{worker: w, cancel: cancel}
	s.reviewers[exp.UUID] = deps.Reviewer

	go w.run(ctx)

	return exp, nil
}

func (s *Supervisor) buildDeps(cfg domain.ExperimentConfig) Deps {
	weights := cfg.Weights
	if weights == (domain.RewardWeights{}) {
		weights = reward.Baseline
	}

	return Deps{
		Gateway:  s.factory.Gateway,
		Memory:   s.factory.NewMemory(cfg),
		Strategy: strategy.New(cfg.Epsilon),
		Reward:   reward.New(weights),
		Reviewer: reviewer.New(reviewer.Config{StrictMode: cfg.StrictMode, EnableModelTier: cfg.EnableDefense}, s.factory.Gateway),
		Clock:    s.factory.Clock,
		Random:   rand.New(cfg.Seed),
		Bus:      s.factory.Bus,
		Metrics:  s.metrics,
	}
}

// Pause implements the pause transition. Rejected without side effect if
// the experiment isn't running.
func (s *Supervisor) Pause(id string) error {
	return s.transitionAndSignal(id, domain.StatusPaused, cmdPause)
}

// Resume implements the resume transition.
func (s *Supervisor) Resume(id string) error {
	return s.transitionAndSignal(id, domain.StatusRunning, cmdResume)
}

// Stop implements the stop transition.
func (s *Supervisor) Stop(id string) error {
	return s.transitionAndSignal(id, domain.StatusStopped, cmdStop)
}

func (s *Supervisor) transitionAndSignal(id string, to domain.ExperimentStatus, cmd command) error {
	s.mu.Lock()
	exp, ok := s.exps[id]
	if !ok {
		s.mu.Unlock()
		return ErrExperimentNotFound
	}
	e := s.workers[id]
	from := exp.Status
	if !domain.CanTransition(from, to) {
		s.mu.Unlock()
		return &TransitionError{From: from, To: to}
	}
	exp.Status = to
	s.mu.Unlock()

	select {
	case e.worker.inbox <- cmd:
	default:
		// Inbox is full (already has a pending identical command); the
		// status change above still takes effect at the next check.
	}
	return nil
}

// Reset implements the reset transition: returns a stopped/failed/completed
// experiment to created, clearing its statistics and episode counter. The
// caller must Start it again to resume running.
func (s *Supervisor) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.exps[id]
	if !ok {
		return ErrExperimentNotFound
	}
	if !domain.CanTransition(exp.Status, domain.StatusCreated) {
		return &TransitionError{From: exp.Status, To: domain.StatusCreated}
	}

	exp.Status = domain.StatusCreated
	exp.CurrentEpisode = 0
	exp.Stats = domain.Statistics{StrategyDistribution: make(map[domain.StrategyTag]int)}
	exp.FailureReason = ""
	exp.EndedAt = time.Time{}
	return nil
}

// Status returns a snapshot of one Experiment's current state.
func (s *Supervisor) Status(id string) (domain.Experiment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.exps[id]
	if !ok {
		return domain.Experiment{}, ErrExperimentNotFound
	}
	return *exp, nil
}

// List returns a snapshot of every known Experiment.
func (s *Supervisor) List() []domain.Experiment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Experiment, 0, len(s.exps))
	for _, exp := range s.exps {
		out = append(out, *exp)
	}
	return out
}

// DefenseStatistics returns the process-wide review counters, summed across
// every experiment's own Safety Reviewer instance (past and present).
func (s *Supervisor) DefenseStatistics() types.ReviewerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total types.ReviewerStats
	for _, r := range s.reviewers {
		st := r.Statistics()
		total.TotalReviews += st.TotalReviews
		total.Blocked += st.Blocked
		total.Warned += st.Warned
		total.Rewritten += st.Rewritten
		total.Escalated += st.Escalated
		total.Accepted += st.Accepted
	}
	return total
}

// ResetDefenseStatistics zeroes every experiment's review counters.
func (s *Supervisor) ResetDefenseStatistics() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reviewers {
		r.ResetStatistics()
	}
}

// Shutdown cancels every worker's context and waits for them to exit, used
// on process shutdown. It does not mutate any experiment's status: workers
// record their own final state (stopped) as they unwind. Waiting is fanned
// out across at most shutdownFanOut experiments at a time so a supervisor
// holding many long-lived experiments doesn't block shutdown behind a
// single slow worker's final episode.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.workers))
	for _, e := range s.workers {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		e.cancel()
	}

	var g errgroup.Group
	g.SetLimit(shutdownFanOut)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			<-e.worker.stopped
			return nil
		})
	}
	_ = g.Wait()
}
