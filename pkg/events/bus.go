// Package events implements an in-process publish/subscribe bus for
// per-experiment lifecycle notifications, consumed by the WebSocket event
// stream endpoint. The register/unregister/broadcast-channel hub shape
// follows this module's WebSocket connection hub, generalized from
// *websocket.Conn subscribers to a generic Event channel per subscriber.
package events

import (
	"sync"
	"sync/atomic"
)

// Kind enumerates the event types the bus carries.
type Kind string

const (
	KindEpisodeCompleted    Kind = "episode_completed"
	KindViolationDetected   Kind = "violation_detected"
	KindDefenseAction       Kind = "defense_action"
	KindExperimentCompleted Kind = "experiment_completed"
	KindStatusChanged       Kind = "status_changed"
	KindError               Kind = "error"
)

// Event is one message on the bus: a kind, the experiment it concerns, a
// monotonically increasing per-experiment sequence number, and an
// arbitrary payload specific to Kind.
type Event struct {
	Kind         Kind
	ExperimentID string
	Sequence     uint64
	Payload      any
}

// subscriberBufferSize bounds how far a slow subscriber can lag before
// Publish starts dropping events to it rather than blocking the publisher.
const subscriberBufferSize = 256

// Bus fans events out to every current subscriber. Safe for concurrent use.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}

	sequences sync.Map // experimentID -> *uint64
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[chan Event]struct{})}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. The channel is closed only by calling unsubscribe.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish assigns the next sequence number for experimentID and fans the
// event out to every current subscriber. A subscriber whose buffer is full
// is skipped for this event rather than blocking every other subscriber.
func (b *Bus) Publish(experimentID string, kind Kind, payload any) Event {
	seq := b.nextSequence(experimentID)
	event := Event{Kind: kind, ExperimentID: experimentID, Sequence: seq, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return event
}

func (b *Bus) nextSequence(experimentID string) uint64 {
	counter, _ := b.sequences.LoadOrStore(experimentID, new(uint64))
	return atomic.AddUint64(counter.(*uint64), 1)
}
