package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Store holds per-browser state keyed by a random id. Entries idle for longer
// than the TTL are dropped by Sweep.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]

	newValue func() T
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type Option[T any] func(*Store[T])

// WithClock overrides time.Now.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) { s.now = now }
}

func New[T any](newValue func() T, ttl time.Duration, logger *slog.Logger, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		entries:  make(map[string]*entry[T]),
		newValue: newValue,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for id and refreshes its idle timer.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastSeen = s.now()
	return e.value, true
}

// Create allocates a new session and returns its id.
func (s *Store[T]) Create() (string, T) {
	id := uuid.NewString()
	v := s.newValue()

	s.mu.Lock()
	s.entries[id] = &entry[T]{value: v, lastSeen: s.now()}
	n := len(s.entries)
	s.mu.Unlock()

	s.logger.Debug("session created", "session", id, "active", n)
	return id, v
}

// GetOrCreate looks up id and falls back to a new session when it is unknown
// or expired. created reports which branch was taken.
func (s *Store[T]) GetOrCreate(id string) (string, T, bool) {
	if id != "" {
		if v, ok := s.Get(id); ok {
			return id, v, false
		}
	}
	newID, v := s.Create()
	return newID, v, true
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store[T]) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", "removed", removed, "active", len(s.entries))
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
