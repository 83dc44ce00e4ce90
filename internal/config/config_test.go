package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/planthealth")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultRedisAddr, cfg.RedisAddr)
	assert.Equal(t, defaultConcurrency, cfg.WorkerConcurrency)
	assert.Equal(t, float64(defaultAlertThreshold), cfg.AlertThreshold)
	assert.Equal(t, defaultOverdueInterval, cfg.OverdueScanInterval)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/planthealth")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("PLANTHEALTH_WORKERS", "12")
	t.Setenv("PLANTHEALTH_ALERT_THRESHOLD", "70.5")
	t.Setenv("PLANTHEALTH_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, 12, cfg.WorkerConcurrency)
	assert.Equal(t, 70.5, cfg.AlertThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsGarbageNumbers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/planthealth")
	t.Setenv("PLANTHEALTH_WORKERS", "many")
	t.Setenv("PLANTHEALTH_ALERT_THRESHOLD", "-5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultConcurrency, cfg.WorkerConcurrency)
	assert.Equal(t, float64(defaultAlertThreshold), cfg.AlertThreshold)
}
