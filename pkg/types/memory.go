package types

import (
	"context"

	"github.com/shieldloop/sentryloop/pkg/domain"
)

// Memory is a bounded store of past experiences with similarity-based
// retrieval and LRU eviction.
type Memory interface {
	// Admit records an experience, generating its embedding and importance
	// score. Returns the stored (or pre-existing, if the canonical summary
	// already matched) entry.
	Admit(ctx context.Context, exp domain.Experience) (domain.MemoryEntry, error)

	// RetrieveSimilar returns up to k entries whose canonical-summary
	// embedding is at least similarity_threshold similar to queryText,
	// ranked most-similar first.
	RetrieveSimilar(ctx context.Context, queryText string, k int) ([]domain.MemoryEntry, error)

	// Size returns the current number of stored entries.
	Size() int

	// Reset clears all entries and reverse indices.
	Reset()
}
