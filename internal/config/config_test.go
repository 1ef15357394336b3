package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"btc", "eth", "sol", "xrp"}, cfg.Assets)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 15.0, cfg.WindowMinutes)
	assert.Equal(t, 100, cfg.CandleLimit)
	assert.Equal(t, 14, cfg.TA.RSIPeriod)
	assert.Equal(t, 0.05, cfg.Trading.MinEdge)
	assert.Equal(t, 30.0, cfg.Trading.MaxPositionUsd)
	assert.Equal(t, 150.0, cfg.Trading.MaxTotalExposureUsd)
	assert.Equal(t, 0.25, cfg.Trading.KellyFraction)
	assert.False(t, cfg.Trading.AutoTrade)
	assert.Equal(t, 60, cfg.Settlement.SweepEveryCycles)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assets: [eth]
poll_interval: 10s
trading:
  auto_trade: true
  min_edge: 0.08
storage:
  postgres_dsn: postgres://bot:secret@db:5432/updown
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"eth"}, cfg.Assets)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.True(t, cfg.Trading.AutoTrade)
	assert.Equal(t, 0.08, cfg.Trading.MinEdge)
	assert.Equal(t, "postgres://bot:secret@db:5432/updown", cfg.Storage.PostgresDSN)

	// Untouched sections keep their defaults.
	assert.Equal(t, 26, cfg.TA.MACDSlow)
	assert.Equal(t, 30.0, cfg.Trading.MaxPositionUsd)
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"no assets":          "assets: []",
		"short candle limit": "candle_limit: 20",
		"bad kelly":          "trading: {kelly_fraction: 1.5}",
		"bad edge":           "trading: {min_edge: 1.0}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
