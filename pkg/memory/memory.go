// Package memory implements the Experience Memory: a bounded store of past
// (issue, response, outcome, reward) tuples with cosine-similarity retrieval
// and importance-weighted-for-inspection, pure-LRU-for-eviction admission.
// Cosine math is adapted from the composite-scoring helpers used for memory
// retrieval elsewhere in the pack; admission bookkeeping follows the
// mutex-guarded reverse-index style this module's registry cache uses.
package memory

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shieldloop/sentryloop/pkg/clock"
	"github.com/shieldloop/sentryloop/pkg/domain"
)

// EmbeddingProvider is the narrow collaborator Memory needs to turn a
// canonical summary string into a vector.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config configures a Memory instance.
type Config struct {
	MaxSize             int
	SimilarityThreshold float64
}

// DefaultConfig returns the component design's defaults: 1000 entries,
// similarity threshold 0.7.
func DefaultConfig() Config {
	return Config{MaxSize: 1000, SimilarityThreshold: 0.7}
}

type node struct {
	entry *domain.MemoryEntry
	elem  *list.Element // position in the LRU order list
}

// Memory implements types.Memory.
type Memory struct {
	mu sync.Mutex

	cfg      Config
	embedder EmbeddingProvider
	clock    clock.Clock

	bySummary map[string]*node
	order     *list.List // front = most recently accessed
}

// New constructs a Memory. clk should be the same clock the owning
// experiment uses for its tick sleeps, so tests can control access-time
// ordering deterministically.
func New(embedder EmbeddingProvider, clk clock.Clock, cfg Config) *Memory {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig().MaxSize
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = DefaultConfig().SimilarityThreshold
	}
	return &Memory{
		cfg:       cfg,
		embedder:  embedder,
		clock:     clk,
		bySummary: make(map[string]*node),
		order:     list.New(),
	}
}

// Admit implements types.Memory.
func (m *Memory) Admit(ctx context.Context, exp domain.Experience) (domain.MemoryEntry, error) {
	summary := exp.CanonicalSummary()

	m.mu.Lock()
	if existing, ok := m.bySummary[summary]; ok {
		entry := *existing.entry
		m.mu.Unlock()
		return entry, nil
	}
	m.mu.Unlock()

	vec, err := m.embedder.Embed(ctx, summary)
	if err != nil {
		return domain.MemoryEntry{}, fmt.Errorf("admit: embed canonical summary: %w", err)
	}

	importance := clampUnit(0.5 + exp.TotalReward/100 + violationBonus(exp) + successBonus(exp))

	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check after acquiring the lock: another goroutine may have admitted
	// the same canonical summary while we were embedding.
	if existing, ok := m.bySummary[summary]; ok {
		entry := *existing.entry
		return entry, nil
	}

	if len(m.bySummary) >= m.cfg.MaxSize {
		m.evictOldestLocked()
	}

	entry := &domain.MemoryEntry{
		Experience:  exp,
		Embedding:   vec,
		Importance:  importance,
		AccessCount: 0,
		LastAccess:  m.clock.Now(),
	}
	elem := m.order.PushFront(entry)
	m.bySummary[summary] = &node{entry: entry, elem: elem}

	return *entry, nil
}

// evictOldestLocked removes the entry with the oldest last-access timestamp.
// Must be called with m.mu held. Pure LRU: importance does not influence
// eviction, only inspection and retrieval reranking (not implemented here,
// per the component design's "design variants" note).
func (m *Memory) evictOldestLocked() {
	back := m.order.Back()
	if back == nil {
		return
	}
	oldest := back.Value.(*domain.MemoryEntry)
	m.order.Remove(back)
	delete(m.bySummary, oldest.Experience.CanonicalSummary())
}

type scored struct {
	entry      *domain.MemoryEntry
	similarity float64
}

// RetrieveSimilar implements types.Memory.
func (m *Memory) RetrieveSimilar(ctx context.Context, queryText string, k int) ([]domain.MemoryEntry, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := m.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("retrieve: embed query: %w", err)
	}

	m.mu.Lock()
	candidates := make([]scored, 0, len(m.bySummary))
	for _, n := range m.bySummary {
		sim := CosineSimilarity(queryVec, n.entry.Embedding)
		if sim >= m.cfg.SimilarityThreshold {
			candidates = append(candidates, scored{entry: n.entry, similarity: sim})
		}
	}
	m.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]domain.MemoryEntry, 0, len(candidates))
	for _, c := range candidates {
		m.touch(c.entry)
		results = append(results, *c.entry)
	}
	return results, nil
}

// touch updates an entry's access metadata and moves it to the front of the
// LRU order, under lock.
func (m *Memory) touch(entry *domain.MemoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.bySummary[entry.Experience.CanonicalSummary()]
	if !ok {
		return
	}
	n.entry.AccessCount++
	n.entry.LastAccess = m.clock.Now()
	m.order.MoveToFront(n.elem)
	*entry = *n.entry
}

// Size implements types.Memory.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySummary)
}

// Reset implements types.Memory.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bySummary = make(map[string]*node)
	m.order = list.New()
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

func violationBonus(exp domain.Experience) float64 {
	if exp.IsViolation {
		return 0.3
	}
	return 0
}

func successBonus(exp domain.Experience) float64 {
	if exp.IsSuccessful() {
		return 0.1
	}
	return 0
}
