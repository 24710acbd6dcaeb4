package provision_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisorhub/advisor-api/internal/domain"
	"advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/domain/idempotency"
	"advisorhub/advisor-api/internal/domain/provision"
	"advisorhub/advisor-api/internal/domain/ratelimit"
	"advisorhub/advisor-api/internal/domain/team"
	advisorrepo "advisorhub/advisor-api/internal/infrastructure/repository/advisor"
	idempotencyrepo "advisorhub/advisor-api/internal/infrastructure/repository/idempotency"
	ratelimitrepo "advisorhub/advisor-api/internal/infrastructure/repository/ratelimit"
	"advisorhub/advisor-api/internal/utils/platformerrors"
)

type fixture struct {
	svc         *provision.Service
	advisors    *advisor.Service
	advisorRepo *advisorrepo.InMemoryRepository
}

func newFixture(t *testing.T, opts provision.Options) *fixture {
	t.Helper()

	if opts.RateLimit == 0 {
		opts = provision.Options{
			RateLimit:  5,
			RateWindow: time.Minute,
			ResultTTL:  10 * time.Minute,
		}
	}

	log := zerolog.Nop()
	repo := advisorrepo.NewInMemoryRepository()
	advisorService := advisor.NewService(repo, log)
	limiter := ratelimit.NewLimiter(ratelimitrepo.NewInMemoryStore(), log)
	guard := idempotency.NewGuard(idempotencyrepo.NewInMemoryStore(), 5*time.Second, log)

	return &fixture{
		svc:         provision.NewService(team.NewRegistry(), advisorService, limiter, guard, opts, log),
		advisors:    advisorService,
		advisorRepo: repo,
	}
}

func TestProvisionStartupSquad(t *testing.T) {
	f := newFixture(t, provision.Options{})
	principal := domain.Principal{ID: "u1"}

	result, err := f.svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, "startup-squad", result.TemplateID)
	assert.Equal(t, "v1", result.Version)
	require.Len(t, result.AdvisorIDs, 3)
	assert.Empty(t, result.Failed)

	owned, err := f.advisors.ListOwn(context.Background(), principal)
	require.NoError(t, err)
	require.Len(t, owned, 3)

	handles := []string{owned[0].Handle, owned[1].Handle, owned[2].Handle}
	assert.Equal(t, []string{"ceo-coach", "pm-coach", "gtm-coach"}, handles)

	for _, adv := range owned {
		assert.Equal(t, "u1", adv.OwnerID)
		assert.Equal(t, advisor.SourceTeam, adv.Metadata.Source)
		assert.Equal(t, "startup-squad", adv.Metadata.TemplateID)
		assert.Equal(t, "v1", adv.Metadata.TemplateVersion)
	}

	// One ownership link per advisor.
	assert.Len(t, f.advisorRepo.Links(), 3)
}

func TestProvisionIdempotentReplay(t *testing.T) {
	f := newFixture(t, provision.Options{})
	principal := domain.Principal{ID: "u1"}

	first, err := f.svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.NoError(t, err)
	second, err := f.svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.NoError(t, err)

	assert.Equal(t, first.AdvisorIDs, second.AdvisorIDs)

	owned, err := f.advisors.ListOwn(context.Background(), principal)
	require.NoError(t, err)
	assert.Len(t, owned, 3)
}

func TestProvisionOmittedKeyNeverDeduplicates(t *testing.T) {
	f := newFixture(t, provision.Options{})
	principal := domain.Principal{ID: "u1"}

	first, err := f.svc.Provision(context.Background(), principal, "startup-squad", "")
	require.NoError(t, err)
	second, err := f.svc.Provision(context.Background(), principal, "startup-squad", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.AdvisorIDs, second.AdvisorIDs)

	owned, err := f.advisors.ListOwn(context.Background(), principal)
	require.NoError(t, err)
	require.Len(t, owned, 6)
	// Handle collisions from the second run resolve by suffixing.
	assert.Equal(t, "ceo-coach-2", owned[3].Handle)
}

func TestProvisionKeysScopedPerActorAndTemplate(t *testing.T) {
	f := newFixture(t, provision.Options{})

	_, err := f.svc.Provision(context.Background(), domain.Principal{ID: "u1"}, "startup-squad", "shared")
	require.NoError(t, err)

	// Same client key, different actor: executes again in the other scope.
	result, err := f.svc.Provision(context.Background(), domain.Principal{ID: "u2"}, "startup-squad", "shared")
	require.NoError(t, err)
	assert.Len(t, result.AdvisorIDs, 3)

	// Same actor and key, different template: also a distinct scope.
	result, err = f.svc.Provision(context.Background(), domain.Principal{ID: "u1"}, "creator-collective", "shared")
	require.NoError(t, err)
	assert.Len(t, result.AdvisorIDs, 2)
}

func TestProvisionUnknownTemplate(t *testing.T) {
	f := newFixture(t, provision.Options{})

	_, err := f.svc.Provision(context.Background(), domain.Principal{ID: "u1"}, "no-such-template", "key-1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeTemplateNotFound))

	// A miss is never cached: a later call with a now-unknown id fails the
	// same way, and nothing was written for the key.
	_, err = f.svc.Provision(context.Background(), domain.Principal{ID: "u1"}, "no-such-template", "key-1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeTemplateNotFound))
}

func TestProvisionUnauthenticated(t *testing.T) {
	f := newFixture(t, provision.Options{})

	_, err := f.svc.Provision(context.Background(), domain.Principal{}, "startup-squad", "key-1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthenticated))
}

func TestProvisionRateLimited(t *testing.T) {
	f := newFixture(t, provision.Options{
		RateLimit:  2,
		RateWindow: time.Minute,
		ResultTTL:  10 * time.Minute,
	})
	principal := domain.Principal{ID: "u1"}

	_, err := f.svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.NoError(t, err)
	_, err = f.svc.Provision(context.Background(), principal, "startup-squad", "key-2")
	require.NoError(t, err)

	_, err = f.svc.Provision(context.Background(), principal, "startup-squad", "key-3")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited))

	pe := platformerrors.GetPlatformError(err)
	require.NotNil(t, pe)
	assert.Greater(t, pe.RetryAfter, time.Duration(0))
}

func TestProvisionReplayStillChargesRateLimit(t *testing.T) {
	f := newFixture(t, provision.Options{
		RateLimit:  2,
		RateWindow: time.Minute,
		ResultTTL:  10 * time.Minute,
	})
	principal := domain.Principal{ID: "u1"}

	_, err := f.svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.NoError(t, err)
	// Replay of the same key consumes the second and last slot.
	_, err = f.svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.NoError(t, err)

	_, err = f.svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited))
}

func TestProvisionPartialFailureAbortsAndCaches(t *testing.T) {
	log := zerolog.Nop()
	creator := &flakyCreator{failOn: 2}
	limiter := ratelimit.NewLimiter(ratelimitrepo.NewInMemoryStore(), log)
	guard := idempotency.NewGuard(idempotencyrepo.NewInMemoryStore(), 5*time.Second, log)
	svc := provision.NewService(team.NewRegistry(), creator, limiter, guard, provision.Options{
		RateLimit:  5,
		RateWindow: time.Minute,
		ResultTTL:  10 * time.Minute,
	}, log)
	principal := domain.Principal{ID: "u1"}

	_, err := svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypePersistence))
	// The loop aborted after the failing item; the third was never attempted.
	assert.Equal(t, 2, creator.calls)

	// A retry with the same key replays the cached partial outcome instead of
	// creating duplicate advisors.
	result, err := svc.Provision(context.Background(), principal, "startup-squad", "key-1")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Len(t, result.AdvisorIDs, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "PM Coach", result.Failed[0].Name)
	assert.Equal(t, 2, creator.calls)
}

func TestProvisionSkipsInvalidItems(t *testing.T) {
	log := zerolog.Nop()
	creator := &flakyCreator{invalidOn: 1}
	limiter := ratelimit.NewLimiter(ratelimitrepo.NewInMemoryStore(), log)
	guard := idempotency.NewGuard(idempotencyrepo.NewInMemoryStore(), 5*time.Second, log)
	svc := provision.NewService(team.NewRegistry(), creator, limiter, guard, provision.Options{
		RateLimit:  5,
		RateWindow: time.Minute,
		ResultTTL:  10 * time.Minute,
	}, log)

	result, err := svc.Provision(context.Background(), domain.Principal{ID: "u1"}, "startup-squad", "key-1")
	require.NoError(t, err)

	// The invalid item is recorded and skipped; the rest still get created.
	assert.False(t, result.OK)
	assert.Len(t, result.AdvisorIDs, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "CEO Coach", result.Failed[0].Name)
	assert.Equal(t, 3, creator.calls)
}

// flakyCreator fails the nth Create call with a configurable error class.
type flakyCreator struct {
	calls     int
	failOn    int // persistence failure on this call (1-based)
	invalidOn int // validation failure on this call (1-based)
}

func (c *flakyCreator) Create(ctx context.Context, principal domain.Principal, params advisor.CreateParams) (*advisor.Advisor, error) {
	c.calls++
	if c.failOn != 0 && c.calls == c.failOn {
		return nil, platformerrors.NewError(platformerrors.LayerRepository, platformerrors.ErrorTypePersistence,
			"database write failed", errors.New("connection reset"))
	}
	if c.invalidOn != 0 && c.calls == c.invalidOn {
		return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeInvalidPayload,
			"field \"Mission\" failed \"min\" validation", nil)
	}
	return &advisor.Advisor{
		ID:      idFor(c.calls),
		OwnerID: principal.ID,
		Name:    params.Name,
	}, nil
}

func idFor(n int) string {
	return "adv_stub_" + string(rune('a'+n-1))
}
