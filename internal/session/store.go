package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown or evicted session id.
var ErrNotFound = errors.New("session not found")

// DefaultIdleTTL is how long an untouched session survives.
const DefaultIdleTTL = 2 * time.Hour

// Store keeps one State per browser session in memory. Events against a
// single session are serialized by a per-session lock; different sessions
// never contend.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
}

type entry struct {
	mu       sync.Mutex
	state    *State
	lastSeen time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. A non-positive idleTTL uses DefaultIdleTTL.
func NewStore(idleTTL time.Duration, opts ...Option) *Store {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	s := &Store{entries: make(map[string]*entry), idleTTL: idleTTL, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ensure returns id if it names a live session, otherwise creates a new
// session with defaults and returns its id.
func (s *Store) Ensure(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[id]; ok && id != "" {
		e.lastSeen = now
		return id, false
	}
	id = uuid.NewString()
	s.entries[id] = &entry{state: New(id, now), lastSeen: now}
	return id, true
}

// Do runs fn with exclusive access to the session's state.
func (s *Store) Do(id string, fn func(*State) error) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		e.lastSeen = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}

// Snapshot returns a copy of the session's state for rendering.
func (s *Store) Snapshot(id string) (*State, error) {
	var out *State
	err := s.Do(id, func(st *State) error {
		out = st.Clone()
		return nil
	})
	return out, err
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts sessions idle longer than the TTL and returns how many were
// removed. Sessions busy processing an event are skipped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, e := range s.entries {
		if !e.lastSeen.Before(cutoff) {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		delete(s.entries, id)
		e.mu.Unlock()
		removed++
	}
	return removed
}

// RunCleanup sweeps every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.idleTTL / 4
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Info("session cleanup started", "interval", interval, "idle_ttl", s.idleTTL)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("evicted idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}
