package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shieldloop/sentryloop/pkg/clock"
	"github.com/shieldloop/sentryloop/pkg/domain"
)

// fakeEmbedder returns a distinct, deterministic vector per distinct text so
// tests can reason about similarity without a real model behind it.
type fakeEmbedder struct {
	calls   int
	vectors map[string][]float32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	// Deterministic pseudo-embedding derived from the text so identical
	// strings always produce identical vectors without needing presets.
	var h float32
	for _, r := range text {
		h += float32(r)
	}
	return []float32{h, 1}, nil
}

func newExperience(episode int, issueType domain.IssueType, strategy domain.StrategyTag, content string, reward float64) domain.Experience {
	return domain.Experience{
		Episode: episode,
		Issue:   domain.Issue{ID: fmt.Sprintf("issue-%d", episode), Type: issueType},
		Response: domain.Response{
			ID:      fmt.Sprintf("resp-%d", episode),
			Content: content,
		},
		Outcome:     &domain.Outcome{CustomerRating: 4, IssueResolved: true},
		Strategy:    strategy,
		TotalReward: reward,
	}
}

func TestAdmitKeepsSizeAtOrBelowMaxSize(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	m := New(newFakeEmbedder(), clk, Config{MaxSize: 3, SimilarityThreshold: 0.7})

	for i := 0; i < 10; i++ {
		exp := newExperience(i, domain.IssueRefundRequest, domain.StrategyPolite, fmt.Sprintf("response body %d", i), 10)
		if _, err := m.Admit(context.Background(), exp); err != nil {
			t.Fatalf("Admit(%d): unexpected error: %v", i, err)
		}
		if m.Size() > 3 {
			t.Fatalf("after admitting %d entries, size = %d, want <= 3", i+1, m.Size())
		}
	}
	if m.Size() != 3 {
		t.Errorf("final size = %d, want 3", m.Size())
	}
}

func TestAdmitDeduplicatesIdenticalCanonicalSummaries(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	embedder := newFakeEmbedder()
	m := New(embedder, clk, Config{MaxSize: 10, SimilarityThreshold: 0.7})

	exp := newExperience(1, domain.IssueRefundRequest, domain.StrategyPolite, "same content", 5)
	same := newExperience(2, domain.IssueRefundRequest, domain.StrategyPolite, "same content", 5)

	if _, err := m.Admit(context.Background(), exp); err != nil {
		t.Fatalf("first Admit: unexpected error: %v", err)
	}
	if _, err := m.Admit(context.Background(), same); err != nil {
		t.Fatalf("second Admit: unexpected error: %v", err)
	}

	if m.Size() != 1 {
		t.Errorf("Size() = %d, want 1 for identical canonical summaries", m.Size())
	}
	if embedder.calls != 1 {
		t.Errorf("expected exactly 1 embed call for a duplicate canonical summary, got %d", embedder.calls)
	}
}

func TestMaxSizeOneEvictsPreviousEntryOnEveryAdmission(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	m := New(newFakeEmbedder(), clk, Config{MaxSize: 1, SimilarityThreshold: 0.0})

	first := newExperience(1, domain.IssueRefundRequest, domain.StrategyPolite, "first", 1)
	second := newExperience(2, domain.IssueComplaint, domain.StrategyEfficient, "second", 1)

	if _, err := m.Admit(context.Background(), first); err != nil {
		t.Fatalf("Admit(first): unexpected error: %v", err)
	}
	if _, err := m.Admit(context.Background(), second); err != nil {
		t.Fatalf("Admit(second): unexpected error: %v", err)
	}

	if m.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", m.Size())
	}

	results, err := m.RetrieveSimilar(context.Background(), "second", 10)
	if err != nil {
		t.Fatalf("RetrieveSimilar: unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected at most one result from a max-size-1 memory, got %d", len(results))
	}
	if results[0].Experience.Response.Content != "second" {
		t.Errorf("expected the surviving entry to be the most recently admitted one, got %q", results[0].Experience.Response.Content)
	}
}

func TestSimilarityThresholdOneReturnsOnlyExactEmbeddingMatches(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	embedder := newFakeEmbedder()
	embedder.vectors["refund_request|polite|exact query"] = []float32{1, 0}
	embedder.vectors["refund_request|polite|other content"] = []float32{0, 1}
	embedder.vectors["exact query"] = []float32{1, 0}

	m := New(embedder, clk, Config{MaxSize: 10, SimilarityThreshold: 1.0})

	a := newExperience(0, domain.IssueRefundRequest, domain.StrategyPolite, "exact query", 1)
	b := newExperience(1, domain.IssueRefundRequest, domain.StrategyPolite, "other content", 1)
	if _, err := m.Admit(context.Background(), a); err != nil {
		t.Fatalf("Admit(a): unexpected error: %v", err)
	}
	if _, err := m.Admit(context.Background(), b); err != nil {
		t.Fatalf("Admit(b): unexpected error: %v", err)
	}

	results, err := m.RetrieveSimilar(context.Background(), "exact query", 10)
	if err != nil {
		t.Fatalf("RetrieveSimilar: unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 exact match at threshold 1.0, got %d", len(results))
	}
	if results[0].Experience.Response.Content != "exact query" {
		t.Errorf("expected the exact-embedding match, got %q", results[0].Experience.Response.Content)
	}
}

func TestRetrieveSimilarUpdatesAccessMetadata(t *testing.T) {
	start := time.Unix(1000, 0)
	clk := clock.NewFake(start)
	m := New(newFakeEmbedder(), clk, Config{MaxSize: 10, SimilarityThreshold: 0.0})

	exp := newExperience(0, domain.IssueRefundRequest, domain.StrategyPolite, "content", 1)
	admitted, err := m.Admit(context.Background(), exp)
	if err != nil {
		t.Fatalf("Admit: unexpected error: %v", err)
	}
	if admitted.AccessCount != 0 {
		t.Errorf("AccessCount after admission = %d, want 0", admitted.AccessCount)
	}

	clk.Advance(5 * time.Second)
	results, err := m.RetrieveSimilar(context.Background(), "content", 5)
	if err != nil {
		t.Fatalf("RetrieveSimilar: unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].AccessCount != 1 {
		t.Errorf("AccessCount after retrieval = %d, want 1", results[0].AccessCount)
	}
	if !results[0].LastAccess.Equal(start.Add(5 * time.Second)) {
		t.Errorf("LastAccess = %v, want %v", results[0].LastAccess, start.Add(5*time.Second))
	}
}

func TestResetClearsAllEntries(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	m := New(newFakeEmbedder(), clk, Config{MaxSize: 10, SimilarityThreshold: 0.7})

	for i := 0; i < 3; i++ {
		exp := newExperience(i, domain.IssueRefundRequest, domain.StrategyPolite, fmt.Sprintf("content %d", i), 1)
		if _, err := m.Admit(context.Background(), exp); err != nil {
			t.Fatalf("Admit(%d): unexpected error: %v", i, err)
		}
	}
	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3 before reset", m.Size())
	}

	m.Reset()
	if m.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after Reset", m.Size())
	}
}

func TestCosineSimilarityBounds(t *testing.T) {
	cases := []struct {
		name     string
		a, b     []float32
		expected float64
		epsilon  float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1, 1e-6},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1, 1e-6},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, 1e-6},
		{"mismatched length", []float32{1, 2}, []float32{1}, 0, 0},
		{"empty", []float32{}, []float32{}, 0, 0},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CosineSimilarity(c.a, c.b)
			if got < c.expected-c.epsilon || got > c.expected+c.epsilon {
				t.Errorf("CosineSimilarity(%v, %v) = %v, want %v ± %v", c.a, c.b, got, c.expected, c.epsilon)
			}
			if got < -1-1e-9 || got > 1+1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %v, out of [-1, 1] bounds", c.a, c.b, got)
			}
		})
	}
}
