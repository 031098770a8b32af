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

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "devnet", cfg.SolanaCluster)
	assert.Equal(t, "wallet", cfg.CallbackRoute())
	assert.Equal(t, time.Duration(0), cfg.ConnectAttemptTTL)
	assert.Equal(t, 30*time.Second, cfg.TransferCooldownDuration())
	assert.False(t, cfg.FeedEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_SCHEME", "app")
	t.Setenv("WALLET_CALLBACK_PATH", "/wallet/")
	t.Setenv("CONNECT_ATTEMPT_TTL", "5m")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wallet", cfg.CallbackRoute())
	assert.Equal(t, 5*time.Minute, cfg.ConnectAttemptTTL)
	assert.True(t, cfg.FeedEnabled())
	assert.Equal(t, "app://wallet", cfg.Environment().RedirectURL(cfg.CallbackRoute()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown env", func(c *Config) { c.AppEnv = "staging" }},
		{"unknown cluster", func(c *Config) { c.SolanaCluster = "localnet" }},
		{"empty callback", func(c *Config) { c.WalletCallbackPath = "/" }},
		{"empty scheme", func(c *Config) { c.Scheme = "" }},
		{"negative ttl", func(c *Config) { c.ConnectAttemptTTL = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvironmentRedirectURL(t *testing.T) {
	dev := Environment{Scheme: "bitebudget", DevHost: "192.168.0.10:8081"}
	assert.Equal(t, "exp://192.168.0.10:8081/--/wallet", dev.RedirectURL("wallet"))

	prod := Environment{Scheme: "bitebudget", Production: true}
	assert.Equal(t, "bitebudget://wallet/signed", prod.RedirectURL("/wallet/signed"))
}
