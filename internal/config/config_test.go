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
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Scraper.FetchTimeout)
	assert.False(t, cfg.Scraper.UseBrowser)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SCRAPER_USE_BROWSER", "true")
	t.Setenv("SCRAPER_FETCH_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Scraper.UseBrowser)
	assert.Equal(t, 5*time.Second, cfg.Scraper.FetchTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit.PerSecond)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Scraper.BatchWorkers = 0
	assert.Error(t, cfg.Validate())

	cfg.Scraper.BatchWorkers = 1
	cfg.RateLimit.Burst = 0
	assert.Error(t, cfg.Validate())
}
