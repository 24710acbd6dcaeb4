package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// Store is the shared counter backing the limiter. Increment must be atomic:
// it bumps the counter for (actorID, action), resetting the window first when
// it has elapsed, and returns the resulting count and window start. Two
// concurrent calls must never both observe the pre-increment count.
type Store interface {
	Increment(ctx context.Context, actorID, action string, window time.Duration, now time.Time) (count int64, windowStart time.Time, err error)
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// Limiter enforces a fixed window per (actor, action) pair. Fixed windows
// allow up to 2x the limit to cluster across a window boundary; that is an
// accepted characteristic of this limiter, not a defect.
type Limiter struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewLimiter wires the limiter with its counter store.
func NewLimiter(store Store, log zerolog.Logger) *Limiter {
	return &Limiter{
		store: store,
		log:   log.With().Str("component", "rate-limiter").Logger(),
		now:   time.Now,
	}
}

// SetClock overrides the limiter clock (test helper).
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// Allow records one call of action by actorID and admits it if the window has
// capacity. The counter is bumped even for rejected calls, so replayed
// requests that will hit an idempotency cache still consume a slot.
func (l *Limiter) Allow(ctx context.Context, actorID, action string, limit int, window time.Duration) error {
	now := l.now()
	count, windowStart, err := l.store.Increment(ctx, actorID, action, window, now)
	if err != nil {
		return platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypePersistence,
			"failed to update rate limit counter", err)
	}

	if count > int64(limit) {
		retryAfter := windowStart.Add(window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		l.log.Warn().
			Str("actor_id", actorID).
			Str("action", action).
			Int64("count", count).
			Int("limit", limit).
			Msg("rate limit exceeded")
		return platformerrors.NewRateLimited(platformerrors.LayerDomain,
			fmt.Sprintf("rate limit exceeded for %s: %d calls per %s", action, limit, window), retryAfter)
	}

	return nil
}
