package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int64
}

// InMemoryStore is a mutex-guarded counter store for demos/tests. The lock
// makes check-and-increment atomic, matching the guarantees of the postgres
// upsert.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewInMemoryStore creates an empty in-memory counter store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*window)}
}

// Increment bumps the counter for (actorID, action), resetting the window
// when it has elapsed.
func (s *InMemoryStore) Increment(ctx context.Context, actorID, action string, windowDur time.Duration, now time.Time) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := actorID + ":" + action
	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= windowDur {
		w = &window{start: now, count: 0}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.start, nil
}

// DeleteStale removes counter entries whose window started before olderThan.
func (s *InMemoryStore) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, w := range s.windows {
		if w.start.Before(olderThan) {
			delete(s.windows, key)
			deleted++
		}
	}
	return deleted, nil
}
