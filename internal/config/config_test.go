package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tronkit/internal/config"
	"github.com/tdex-network/tronkit/pkg/explorer/trongrid"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(nil)
	require.NoError(t, err)

	require.Equal(t, trongrid.DefaultEndpoint, cfg.FullNodeURL)
	require.Equal(t, trongrid.DefaultEndpoint, cfg.SolidityNodeURL)
	require.Empty(t, cfg.APIKey)
	require.Equal(t, int64(100000000), cfg.FeeLimit)
	require.Equal(t, 3*time.Second, cfg.PollInterval)
	require.Equal(t, 3, cfg.MaxAttempts)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, log.InfoLevel, cfg.LogLevel)
	require.NotEmpty(t, cfg.Datadir)
	require.Equal(t, 3, cfg.RetryPolicy().MaxAttempts)
}

func TestLoadFromEnv(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("TRONKIT_FULL_NODE_URL", "https://api.shasta.trongrid.io/")
	t.Setenv("TRONKIT_API_KEY", "secret")
	t.Setenv("TRONKIT_POLL_INTERVAL", "500")
	t.Setenv("TRONKIT_MAX_ATTEMPTS", "5")
	t.Setenv("TRONKIT_DATADIR", datadir)
	t.Setenv("TRONKIT_LOG_LEVEL", "5")

	cfg, err := config.Load(map[string]interface{}{
		config.FeeLimitKey: 5000000,
	})
	require.NoError(t, err)

	require.Equal(t, "https://api.shasta.trongrid.io", cfg.FullNodeURL)
	require.Equal(t, cfg.FullNodeURL, cfg.SolidityNodeURL)
	require.Equal(t, "secret", cfg.APIKey)
	require.Equal(t, int64(5000000), cfg.FeeLimit)
	require.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	require.Equal(t, 5, cfg.RetryPolicy().MaxAttempts)
	require.Equal(t, log.DebugLevel, cfg.LogLevel)

	opts := cfg.TrongridOpts()
	require.Equal(t, "secret", opts.APIKey)
	require.Equal(t, cfg.RequestTimeout, opts.Timeout)

	require.NoError(t, cfg.InitDatadir())
	info, err := os.Stat(filepath.Join(datadir, config.DbLocation))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
	}{
		{config.FullNodeURLKey, "api.trongrid.io"},
		{config.SolidityNodeURLKey, "ftp://node"},
		{config.FeeLimitKey, -1},
		{config.PollIntervalKey, 0},
		{config.MaxAttemptsKey, 0},
		{config.RequestsPerSecondKey, -1},
		{config.RequestTimeoutKey, 0},
		{config.DatadirKey, ""},
		{config.LogLevelKey, 7},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := config.Load(map[string]interface{}{tt.key: tt.value})
			require.Error(t, err)
		})
	}
}
