package cache

import (
	"context"
	"errors"
	"testing"
)

type countingProvider struct {
	calls int
	fail  bool
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("upstream unavailable")
	}
	return []float32{float32(len(text)), 1}, nil
}

func TestEmbedCachesSecondCallAsHit(t *testing.T) {
	provider := &countingProvider{}
	c := New(provider)

	v1, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", provider.calls)
	}
	if len(v1) != len(v2) || v1[0] != v2[0] {
		t.Errorf("expected identical vectors from cache hit")
	}

	stats := c.Statistics()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestEmbedDoesNotCacheUpstreamFailure(t *testing.T) {
	provider := &countingProvider{fail: true}
	c := New(provider)

	_, err1 := c.Embed(context.Background(), "x")
	_, err2 := c.Embed(context.Background(), "x")

	if err1 == nil || err2 == nil {
		t.Fatal("expected both calls to surface the upstream error")
	}
	if provider.calls != 2 {
		t.Errorf("expected the failure to not be cached, got %d upstream calls", provider.calls)
	}
}

func TestMaxEntriesEvictsLeastRecentlyUsed(t *testing.T) {
	provider := &countingProvider{}
	c := New(provider, WithMaxEntries(2))

	c.Embed(context.Background(), "a")
	c.Embed(context.Background(), "b")
	c.Embed(context.Background(), "a") // touch "a", making "b" the LRU entry
	c.Embed(context.Background(), "c") // should evict "b"

	if c.Statistics().Size != 2 {
		t.Fatalf("Size = %d, want 2", c.Statistics().Size)
	}

	provider.calls = 0
	c.Embed(context.Background(), "a") // still cached
	c.Embed(context.Background(), "c") // still cached
	if provider.calls != 0 {
		t.Errorf("expected 'a' and 'c' to remain cached, got %d upstream calls", provider.calls)
	}

	c.Embed(context.Background(), "b") // evicted, must recompute
	if provider.calls != 1 {
		t.Errorf("expected 'b' to require recomputation, got %d upstream calls", provider.calls)
	}
}

func TestDisabledCacheAlwaysCallsThrough(t *testing.T) {
	provider := &countingProvider{}
	c := New(provider, WithEnabled(false))

	c.Embed(context.Background(), "x")
	c.Embed(context.Background(), "x")

	if provider.calls != 2 {
		t.Errorf("expected disabled cache to call through every time, got %d calls", provider.calls)
	}
}
