package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisorhub/advisor-api/internal/domain"
	"advisorhub/advisor-api/internal/domain/advisor"
	"advisorhub/advisor-api/internal/domain/idempotency"
	"advisorhub/advisor-api/internal/domain/provision"
	"advisorhub/advisor-api/internal/domain/ratelimit"
	"advisorhub/advisor-api/internal/domain/team"
	"advisorhub/advisor-api/internal/infrastructure/auth"
	advisorrepo "advisorhub/advisor-api/internal/infrastructure/repository/advisor"
	idempotencyrepo "advisorhub/advisor-api/internal/infrastructure/repository/idempotency"
	ratelimitrepo "advisorhub/advisor-api/internal/infrastructure/repository/ratelimit"
	"advisorhub/advisor-api/internal/interfaces/httpserver/handlers"
	"advisorhub/advisor-api/internal/interfaces/httpserver/routes"
)

func newTestEngine(t *testing.T, rateLimit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zerolog.Nop()
	repo := advisorrepo.NewInMemoryRepository()
	advisorService := advisor.NewService(repo, log)
	limiter := ratelimit.NewLimiter(ratelimitrepo.NewInMemoryStore(), log)
	guard := idempotency.NewGuard(idempotencyrepo.NewInMemoryStore(), 5*time.Second, log)
	registry := team.NewRegistry()
	provisionService := provision.NewService(registry, advisorService, limiter, guard, provision.Options{
		RateLimit:  rateLimit,
		RateWindow: time.Minute,
		ResultTTL:  10 * time.Minute,
	}, log)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User-Id"); id != "" {
			auth.SetPrincipal(c, domain.Principal{ID: id, Subject: id, AuthMethod: domain.AuthMethodDev})
		}
		c.Next()
	})

	handlerProvider := handlers.NewProvider(provisionService, advisorService, registry, log)
	routes.NewProvider(handlerProvider).Register(engine)
	return engine
}

func provisionRequest(t *testing.T, body map[string]any, headers map[string]string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/teams/provision", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestProvisionTeamEndpoint(t *testing.T) {
	engine := newTestEngine(t, 5)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, provisionRequest(t,
		map[string]any{"template_id": "startup-squad", "idempotency_key": "key-1"},
		map[string]string{"X-User-Id": "u1"}))

	require.Equal(t, http.StatusOK, rec.Code)

	var result provision.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, "startup-squad", result.TemplateID)
	assert.Len(t, result.AdvisorIDs, 3)
}

func TestProvisionTeamEndpointReplay(t *testing.T) {
	engine := newTestEngine(t, 5)
	headers := map[string]string{"X-User-Id": "u1", "Idempotency-Key": "header-key"}
	body := map[string]any{"template_id": "startup-squad"}

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, provisionRequest(t, body, headers))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, provisionRequest(t, body, headers))
	require.Equal(t, http.StatusOK, second.Code)

	var a, b provision.Result
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.AdvisorIDs, b.AdvisorIDs)
}

func TestProvisionTeamEndpointMissingTemplateID(t *testing.T) {
	engine := newTestEngine(t, 5)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, provisionRequest(t,
		map[string]any{"idempotency_key": "key-1"},
		map[string]string{"X-User-Id": "u1"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PAYLOAD")
}

func TestProvisionTeamEndpointUnauthenticated(t *testing.T) {
	engine := newTestEngine(t, 5)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, provisionRequest(t,
		map[string]any{"template_id": "startup-squad"}, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
}

func TestProvisionTeamEndpointUnknownTemplate(t *testing.T) {
	engine := newTestEngine(t, 5)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, provisionRequest(t,
		map[string]any{"template_id": "no-such-template"},
		map[string]string{"X-User-Id": "u1"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TEMPLATE_NOT_FOUND")
}

func TestProvisionTeamEndpointRateLimited(t *testing.T) {
	engine := newTestEngine(t, 1)
	headers := map[string]string{"X-User-Id": "u1"}

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, provisionRequest(t, map[string]any{"template_id": "startup-squad"}, headers))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, provisionRequest(t, map[string]any{"template_id": "startup-squad"}, headers))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
