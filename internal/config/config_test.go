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
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "redis", cfg.EventBroker)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, 5, cfg.TopProductsLimit)
	assert.Equal(t, 5, cfg.RecentOrdersLimit)
	assert.Equal(t, 5*time.Minute, cfg.StockSweepInterval)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EVENT_BROKER", "amqp")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "amqp", cfg.EventBroker)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.False(t, cfg.MetricsEnabled)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsInvalidValues(t *testing.T) {

	t.Setenv("EVENT_BROKER", "kafka")
	_, err := Load()
	assert.ErrorContains(t, err, "EVENT_BROKER")

	t.Setenv("EVENT_BROKER", "none")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.ErrorContains(t, err, "TIMEZONE")

	t.Setenv("TIMEZONE", "Local")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
