package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T) *AppConfig {
	t.Helper()
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	return &cfg
}

func TestDefaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, "gatehouse:slot:", cfg.Auth.Slots.Prefix)
	assert.Equal(t, 720*time.Hour, cfg.Auth.Slots.TTL)
	assert.False(t, cfg.Auth.SSO.Enabled())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 512, cfg.HTTP.MaxConns)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "gatehouse", cfg.Postgres.Name)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.False(t, cfg.Observability.Metrics.IsEnabled())
}

func TestAuthModeParsing(t *testing.T) {
	t.Run("valid modes", func(t *testing.T) {
		for _, mode := range []string{"local", "remote", "mock", "LOCAL", "Remote"} {
			var m AuthMode
			require.NoError(t, m.UnmarshalText([]byte(mode)))
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		var m AuthMode
		err := m.UnmarshalText([]byte("oauth2"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid AuthMode")
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("AUTH_MODE", "mock")
		cfg := parseConfig(t)
		assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	})
}

func TestDevModeDetection(t *testing.T) {
	t.Run("NODE_ENV fallback", func(t *testing.T) {
		t.Setenv("NODE_ENV", "development")
		cfg := parseConfig(t)
		assert.True(t, cfg.IsDev)
	})

	t.Run("DEV flag wins", func(t *testing.T) {
		t.Setenv("DEV", "true")
		t.Setenv("NODE_ENV", "production")
		cfg := parseConfig(t)
		assert.True(t, cfg.IsDev)
	})
}

func TestSanitize(t *testing.T) {
	t.Run("clamps http guardrails", func(t *testing.T) {
		cfg := AppConfig{}
		cfg.HTTP.MaxConns = -1
		cfg.HTTP.ShutdownTimeout = -time.Second
		cfg.Sanitize()
		assert.Equal(t, 512, cfg.HTTP.MaxConns)
		assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	})

	t.Run("restores slot defaults", func(t *testing.T) {
		cfg := AppConfig{}
		cfg.Auth.Slots.TTL = -time.Hour
		cfg.Sanitize()
		assert.Equal(t, "gatehouse:slot:", cfg.Auth.Slots.Prefix)
		assert.Equal(t, time.Duration(0), cfg.Auth.Slots.TTL)
	})

	t.Run("metrics disabled without an address", func(t *testing.T) {
		cfg := AppConfig{}
		cfg.Observability.Metrics.Enabled = true
		cfg.Observability.Metrics.StatsdAddress = "   "
		cfg.Sanitize()
		assert.False(t, cfg.Observability.Metrics.IsEnabled())
	})
}

func TestAuthValidate(t *testing.T) {
	t.Run("remote mode needs a base url", func(t *testing.T) {
		cfg := AuthConfig{Mode: AuthModeRemote}
		cfg.Sanitize()
		require.Error(t, cfg.Validate())

		cfg.Remote.BaseURL = "https://platform.example.com"
		require.NoError(t, cfg.Validate())
	})

	t.Run("sso needs a client secret", func(t *testing.T) {
		cfg := AuthConfig{Mode: AuthModeLocal}
		cfg.SSO.DiscoveryURL = "https://idp.example.com"
		cfg.Sanitize()
		require.Error(t, cfg.Validate())

		cfg.SSO.ClientSecret = "hunter2"
		require.NoError(t, cfg.Validate())
	})
}
