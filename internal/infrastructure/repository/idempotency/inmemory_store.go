package idempotency

import (
	"context"
	"sync"
	"time"

	domain "advisorhub/advisor-api/internal/domain/idempotency"
)

// InMemoryStore is a mutex-guarded record store for demos/tests. The lock
// spans the whole check-and-claim, matching the atomicity of the postgres
// unique-constraint path.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*domain.Record
	now     func() time.Time
}

// NewInMemoryStore creates an empty in-memory record store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*domain.Record),
		now:     time.Now,
	}
}

// SetClock overrides the store clock (test helper).
func (s *InMemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Claim tries to take ownership of key.
func (s *InMemoryStore) Claim(ctx context.Context, key string, ttl time.Duration) (domain.ClaimOutcome, *domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if ok && rec.ExpiresAt.After(now) {
		if rec.Status == domain.StatusCompleted {
			copied := *rec
			return domain.OutcomeCompleted, &copied, nil
		}
		return domain.OutcomePending, nil, nil
	}

	s.records[key] = &domain.Record{
		Key:       key,
		Status:    domain.StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return domain.OutcomeClaimed, nil, nil
}

// Complete stores the result under key.
func (s *InMemoryStore) Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if !ok {
		rec = &domain.Record{Key: key, CreatedAt: now}
		s.records[key] = rec
	}
	rec.Status = domain.StatusCompleted
	rec.Result = result
	rec.ExpiresAt = now.Add(ttl)
	return nil
}

// Release drops an unfinished claim.
func (s *InMemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok && rec.Status == domain.StatusPending {
		delete(s.records, key)
	}
	return nil
}

// DeleteExpired removes records past their expiry.
func (s *InMemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, rec := range s.records {
		if !rec.ExpiresAt.After(now) {
			delete(s.records, key)
			deleted++
		}
	}
	return deleted, nil
}
