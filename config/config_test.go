package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "description-publisher", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "https://www.wikidata.org", cfg.API.BaseURL)
	assert.Equal(t, "/w/api.php", cfg.API.EndpointPath)
	assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Notifier.PollInterval)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "desc-pub-test")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STRUCTURED_DATA_BASE_URL", "http://localhost:8181")
	t.Setenv("STRUCTURED_DATA_TIMEOUT", "5s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("NOTIFIER_POLL_INTERVAL", "1m")
	t.Setenv("PUBLISH_RATE_LIMIT_RPS", "2.5")
	t.Setenv("PUBLISH_RATE_LIMIT_BURST", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "desc-pub-test", cfg.ServiceName)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:8181", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Notifier.PollInterval)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
}

func TestLoadConfig_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("STRUCTURED_DATA_TIMEOUT", "not-a-duration")
	t.Setenv("PUBLISH_RATE_LIMIT_RPS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"missing base url": {
			mutate:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: "STRUCTURED_DATA_BASE_URL",
		},
		"missing endpoint path": {
			mutate:  func(c *Config) { c.API.EndpointPath = "" },
			wantErr: "STRUCTURED_DATA_ENDPOINT_PATH",
		},
		"missing user agent": {
			mutate:  func(c *Config) { c.API.UserAgent = "" },
			wantErr: "STRUCTURED_DATA_USER_AGENT",
		},
		"non-positive rate limit": {
			mutate:  func(c *Config) { c.RateLimit.RequestsPerSecond = 0 },
			wantErr: "PUBLISH_RATE_LIMIT_RPS",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)

			tc.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
