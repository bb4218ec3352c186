package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusegate/fusegate/internal/resilience"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Breaker.FailureThreshold)
	assert.Equal(t, 2*time.Second, cfg.Breaker.CallTimeout)
	assert.NoError(t, cfg.Breaker.Policy().Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "7")
	t.Setenv("BREAKER_CALL_TIMEOUT", "750ms")
	t.Setenv("BREAKER_MIN_CALLS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Breaker.FailureThreshold)
	assert.Equal(t, 750*time.Millisecond, cfg.Breaker.CallTimeout)
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "10")
	t.Setenv("BREAKER_MIN_CALLS", "2")

	_, err := Load()
	require.ErrorIs(t, err, resilience.ErrInvalidPolicy)
}

func TestDefaultMatchesPolicyDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, resilience.DefaultPolicy(), cfg.Breaker.Policy())
}
