package idempotency

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"advisorhub/advisor-api/internal/utils/platformerrors"
)

// Status of a stored idempotency record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Record is the cached outcome of a prior guarded execution. Result is an
// opaque payload owned by the caller.
type Record struct {
	Key       string
	Status    Status
	Result    []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ClaimOutcome describes what Claim found for a key.
type ClaimOutcome int

const (
	// OutcomeClaimed means the caller owns the key and must run the work.
	OutcomeClaimed ClaimOutcome = iota
	// OutcomeCompleted means an unexpired result exists; rec carries it.
	OutcomeCompleted
	// OutcomePending means another invocation holds the claim right now.
	OutcomePending
)

// Store persists idempotency records. Claim must be atomic on key: of two
// concurrent calls for the same unclaimed key, exactly one gets
// OutcomeClaimed. Expired rows (completed or abandoned pending claims) are
// taken over by the next Claim.
type Store interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (ClaimOutcome, *Record, error)
	Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Fn is the guarded unit of work. It returns the payload to cache. When it
// returns both a payload and an error, the payload is still stored under the
// key before the error propagates, so a retry with the same key replays the
// partial outcome instead of re-running side effects.
type Fn func(ctx context.Context) ([]byte, error)

// Guard deduplicates executions that share an idempotency key.
type Guard struct {
	store Store
	log   zerolog.Logger

	// wait bounds how long a duplicate call blocks on a concurrent claim
	// before giving up.
	wait         time.Duration
	pollInterval time.Duration
}

// NewGuard wires the guard with its record store.
func NewGuard(store Store, wait time.Duration, log zerolog.Logger) *Guard {
	if wait <= 0 {
		wait = 30 * time.Second
	}
	return &Guard{
		store:        store,
		log:          log.With().Str("component", "idempotency-guard").Logger(),
		wait:         wait,
		pollInterval: 100 * time.Millisecond,
	}
}

// Do returns the cached payload for key when an unexpired record exists,
// without invoking fn. Otherwise it claims the key, runs fn, stores the result
// with expiry now+ttl, and returns it. cached reports whether the payload came
// from the cache. The claim is always resolved - completed or released - even
// when fn fails, so a later call never deadlocks on an abandoned claim.
func (g *Guard) Do(ctx context.Context, key string, ttl time.Duration, fn Fn) (result []byte, cached bool, err error) {
	deadline := time.Now().Add(g.wait)

	for {
		outcome, rec, err := g.store.Claim(ctx, key, ttl)
		if err != nil {
			return nil, false, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypePersistence,
				"failed to claim idempotency key", err)
		}

		switch outcome {
		case OutcomeCompleted:
			g.log.Debug().Str("key", key).Msg("idempotency cache hit")
			return rec.Result, true, nil

		case OutcomeClaimed:
			return g.execute(ctx, key, ttl, fn)

		case OutcomePending:
			// Another invocation with the same key is running. Wait for it to
			// finish rather than double-executing the side effects.
			if time.Now().After(deadline) {
				return nil, false, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypePersistence,
					"timed out waiting for concurrent request with same idempotency key", nil)
			}
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(g.pollInterval):
			}
		}
	}
}

func (g *Guard) execute(ctx context.Context, key string, ttl time.Duration, fn Fn) ([]byte, bool, error) {
	payload, fnErr := fn(ctx)

	if fnErr != nil && payload == nil {
		// Nothing worth caching: drop the claim so a retry re-executes.
		if relErr := g.store.Release(ctx, key); relErr != nil {
			g.log.Error().Err(relErr).Str("key", key).Msg("failed to release idempotency claim")
		}
		return nil, false, fnErr
	}

	if err := g.store.Complete(ctx, key, payload, ttl); err != nil {
		g.log.Error().Err(err).Str("key", key).Msg("failed to store idempotency result")
		if fnErr != nil {
			return payload, false, fnErr
		}
		return nil, false, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypePersistence,
			"failed to store idempotency result", err)
	}

	return payload, false, fnErr
}
