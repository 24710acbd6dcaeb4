package idempotency_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisorhub/advisor-api/internal/domain/idempotency"
	idempotencyrepo "advisorhub/advisor-api/internal/infrastructure/repository/idempotency"
)

func newGuard(t *testing.T) (*idempotency.Guard, *idempotencyrepo.InMemoryStore) {
	t.Helper()
	store := idempotencyrepo.NewInMemoryStore()
	return idempotency.NewGuard(store, 5*time.Second, zerolog.Nop()), store
}

func TestDoExecutesOnce(t *testing.T) {
	guard, _ := newGuard(t)

	var calls int
	fn := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte(`{"ok":true}`), nil
	}

	result, cached, err := guard.Do(context.Background(), "key-1", time.Minute, fn)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, `{"ok":true}`, string(result))

	result, cached, err = guard.Do(context.Background(), "key-1", time.Minute, fn)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, `{"ok":true}`, string(result))

	assert.Equal(t, 1, calls)
}

func TestDoDistinctKeysExecuteIndependently(t *testing.T) {
	guard, _ := newGuard(t)

	var calls int
	fn := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("done"), nil
	}

	_, _, err := guard.Do(context.Background(), "key-a", time.Minute, fn)
	require.NoError(t, err)
	_, _, err = guard.Do(context.Background(), "key-b", time.Minute, fn)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestDoReExecutesAfterExpiry(t *testing.T) {
	store := idempotencyrepo.NewInMemoryStore()
	guard := idempotency.NewGuard(store, 5*time.Second, zerolog.Nop())

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	var calls int
	fn := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("done"), nil
	}

	_, cached, err := guard.Do(context.Background(), "key-1", time.Minute, fn)
	require.NoError(t, err)
	assert.False(t, cached)

	now = now.Add(2 * time.Minute)

	_, cached, err = guard.Do(context.Background(), "key-1", time.Minute, fn)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, calls)
}

func TestDoReleasesClaimOnError(t *testing.T) {
	guard, _ := newGuard(t)

	boom := errors.New("boom")
	_, cached, err := guard.Do(context.Background(), "key-1", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, cached)

	// The claim was dropped, so a retry re-executes instead of deadlocking.
	result, cached, err := guard.Do(context.Background(), "key-1", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("retried"), nil
	})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "retried", string(result))
}

func TestDoCachesPartialPayloadOnError(t *testing.T) {
	guard, _ := newGuard(t)

	boom := errors.New("persistence failed")
	payload, cached, err := guard.Do(context.Background(), "key-1", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("partial"), boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, cached)
	assert.Equal(t, "partial", string(payload))

	// A retry with the same key replays the stored partial outcome rather
	// than re-running the side effects.
	var calls int
	result, cached, err := guard.Do(context.Background(), "key-1", time.Minute, func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("should not run"), nil
	})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "partial", string(result))
	assert.Zero(t, calls)
}

func TestDoConcurrentCallsExecuteOnce(t *testing.T) {
	guard, _ := newGuard(t)

	var calls atomic.Int64
	fn := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return []byte("done"), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, _, err := guard.Do(context.Background(), "shared-key", time.Minute, fn)
			results[i] = string(result)
			errs[i] = err
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "done", results[i])
	}
}

func TestDoTimesOutOnStuckClaim(t *testing.T) {
	store := idempotencyrepo.NewInMemoryStore()
	guard := idempotency.NewGuard(store, 300*time.Millisecond, zerolog.Nop())

	// Seed a pending claim that nobody will ever resolve.
	outcome, _, err := store.Claim(context.Background(), "stuck", time.Minute)
	require.NoError(t, err)
	require.Equal(t, idempotency.OutcomeClaimed, outcome)

	_, _, err = guard.Do(context.Background(), "stuck", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("never"), nil
	})
	require.Error(t, err)
}
