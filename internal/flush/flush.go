// Package flush implements the debounced dirty-set persistence used for
// interactive geometry edits. Each scheduler owns its own timer, so
// independent debounce scopes (marker geometry, captions) never share a
// timer handle.
package flush

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDelay is the quiet period after the last touch before a flush.
const DefaultDelay = 500 * time.Millisecond

// Scheduler accumulates touched entity ids across a burst of input and
// invokes the flush callback once per quiet period with the whole set.
// A touch inside the window resets the single shared timer rather than
// scheduling an additional one, so at most one flush happens per burst.
type Scheduler struct {
	delay time.Duration
	flush func([]uuid.UUID)

	mu     sync.Mutex
	dirty  map[uuid.UUID]struct{}
	timer  *time.Timer
	closed bool
}

// NewScheduler returns a scheduler that calls flushFn with the touched ids
// after delay of inactivity. A non-positive delay falls back to
// DefaultDelay.
func NewScheduler(delay time.Duration, flushFn func([]uuid.UUID)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{
		delay: delay,
		flush: flushFn,
		dirty: make(map[uuid.UUID]struct{}),
	}
}

// Touch marks the entity dirty and (re)starts the debounce window.
func (s *Scheduler) Touch(ids ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, id := range ids {
		s.dirty[id] = struct{}{}
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// FlushNow flushes the dirty set immediately, canceling any pending timer.
// Used on drag release where the persist must not wait out the window.
func (s *Scheduler) FlushNow() {
	s.fire()
}

// Pending reports whether the entity is currently marked dirty.
func (s *Scheduler) Pending(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dirty[id]
	return ok
}

// Close cancels any scheduled flush. Dirty entries are discarded.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.dirty = make(map[uuid.UUID]struct{})
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed || len(s.dirty) == 0 {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	ids := make([]uuid.UUID, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	// The set clears regardless of how the flush goes; there is no retry
	// layer behind it.
	s.dirty = make(map[uuid.UUID]struct{})
	s.mu.Unlock()

	s.flush(ids)
}
