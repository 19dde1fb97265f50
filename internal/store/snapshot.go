// Package store holds the current working set of events as an immutable
// snapshot. A refresh fully replaces the set; there is no merge or diff.
package store

import (
	"sync"
	"time"

	"calgrid/internal/model"
)

// Store is the in-memory event snapshot shared between the refresh
// pipeline and the layout/web layers. Readers always see a complete
// snapshot; every mutation builds a new slice so an in-flight layout pass
// can never observe a half-updated collection.
type Store struct {
	mu        sync.RWMutex
	events    []model.Event
	gen       uint64
	updatedAt time.Time
}

// New returns an empty store at generation 0.
func New() *Store {
	return &Store{events: []model.Event{}}
}

// Replace swaps in a fresh working set and bumps the generation. The
// caller must not retain or mutate events after handing it over.
func (s *Store) Replace(events []model.Event) {
	if events == nil {
		events = []model.Event{}
	}
	s.mu.Lock()
	s.events = events
	s.gen++
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Snapshot returns the current working set and its generation. The slice
// is shared and must be treated as read-only; the generation lets callers
// key caches and discard results computed against a stale set.
func (s *Store) Snapshot() ([]model.Event, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events, s.gen
}

// UpdatedAt reports when the working set last changed.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Get looks up an event by ID in the current snapshot.
func (s *Store) Get(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}

// Apply replaces the event with moved.ID by moved in a freshly built
// slice, bumping the generation. Used for the optimistic local apply of a
// reschedule while the external persistence collaborator catches up.
// Returns false if no event with that ID exists.
func (s *Store) Apply(moved model.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, ev := range s.events {
		if ev.ID == moved.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	next := make([]model.Event, len(s.events))
	copy(next, s.events)
	next[idx] = moved

	s.events = next
	s.gen++
	s.updatedAt = time.Now()
	return true
}
