package domain

import "time"

// MemoryEntry is a single admitted experience inside the Experience Memory.
// Owns its Experience by value. Destroyed only by LRU eviction.
type MemoryEntry struct {
	Experience  Experience
	Embedding   []float32
	Importance  float64 // clamp(0.5 + reward/100 + 0.3*is_violation + 0.1*is_successful, 0, 1)
	AccessCount int
	LastAccess  time.Time
}
