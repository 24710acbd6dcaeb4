package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "advisor-api", cfg.ServiceName)
	assert.Equal(t, ":8190", cfg.Addr())
	assert.Equal(t, 5, cfg.ProvisionRateLimit)
	assert.Equal(t, time.Minute, cfg.ProvisionRateWindow)
	assert.Equal(t, 10*time.Minute, cfg.IdempotencyTTL)
	assert.False(t, cfg.AuthEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("PROVISION_RATE_LIMIT", "3")
	t.Setenv("PROVISION_RATE_WINDOW", "60s")
	t.Setenv("IDEMPOTENCY_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 3, cfg.ProvisionRateLimit)
	assert.Equal(t, time.Minute, cfg.ProvisionRateWindow)
	assert.Equal(t, 5*time.Minute, cfg.IdempotencyTTL)
}

func TestLoadAuthValidation(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_ISSUER", "")
	t.Setenv("AUTH_JWKS_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_ISSUER")
}

func TestLoadRejectsBadGuardrails(t *testing.T) {
	t.Setenv("PROVISION_RATE_LIMIT", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVISION_RATE_LIMIT")
}
