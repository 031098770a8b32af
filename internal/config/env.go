package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	envDevelopment = "development"
	envProduction  = "production"
)

// Config contains all configuration parameters for the application.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	Scheme  string `envconfig:"APP_SCHEME" default:"bitebudget"`
	DevHost string `envconfig:"APP_DEV_HOST" default:"127.0.0.1:8081"`

	AppName    string `envconfig:"APP_NAME" default:"BiteBudget"`
	AppURL     string `envconfig:"APP_URL" default:"https://bitebudget.app"`
	AppIconURL string `envconfig:"APP_ICON_URL" default:"https://bitebudget.app/icon.png"`

	WalletCallbackPath string `envconfig:"WALLET_CALLBACK_PATH" default:"wallet"`
	PhantomBaseURL     string `envconfig:"PHANTOM_BASE_URL" default:"https://phantom.app"`

	SolanaCluster string `envconfig:"SOLANA_CLUSTER" default:"devnet"`
	SolanaRPCURL  string `envconfig:"SOLANA_RPC_URL" default:"https://api.devnet.solana.com"`

	// Zero keeps pending connect attempts until they are replaced.
	ConnectAttemptTTL time.Duration `envconfig:"CONNECT_ATTEMPT_TTL" default:"0s"`
	TransferCooldown  int           `envconfig:"TRANSFER_COOLDOWN_SECONDS" default:"30"`
	ConnectRate       int           `envconfig:"CONNECT_RATE_PER_SECOND" default:"2"`
	ConnectBurst      int           `envconfig:"CONNECT_RATE_BURST" default:"5"`

	SupabaseURL     string `envconfig:"SUPABASE_URL"`
	SupabaseAnonKey string `envconfig:"SUPABASE_ANON_KEY"`

	LogFile string `envconfig:"LOG_FILE"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.AppEnv {
	case envDevelopment, envProduction:
	default:
		return fmt.Errorf("APP_ENV must be %s or %s", envDevelopment, envProduction)
	}
	switch c.SolanaCluster {
	case "devnet", "testnet", "mainnet", "mainnet-beta":
	default:
		return fmt.Errorf("unsupported SOLANA_CLUSTER %q", c.SolanaCluster)
	}
	if strings.Trim(c.WalletCallbackPath, "/") == "" {
		return errors.New("WALLET_CALLBACK_PATH cannot be empty")
	}
	if c.Scheme == "" {
		return errors.New("APP_SCHEME cannot be empty")
	}
	if c.ConnectAttemptTTL < 0 {
		return errors.New("CONNECT_ATTEMPT_TTL cannot be negative")
	}
	if c.TransferCooldown < 0 {
		return errors.New("TRANSFER_COOLDOWN_SECONDS cannot be negative")
	}
	return nil
}

// Environment returns the resolved link environment.
func (c *Config) Environment() Environment {
	return Environment{
		Scheme:     c.Scheme,
		DevHost:    c.DevHost,
		Production: c.AppEnv == envProduction,
	}
}

// CallbackRoute returns the wallet callback route without slashes.
func (c *Config) CallbackRoute() string {
	return strings.Trim(c.WalletCallbackPath, "/")
}

// FeedEnabled reports whether the backend collaborator is configured.
func (c *Config) FeedEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

// TransferCooldownDuration returns the cooldown between transfer hand-offs.
func (c *Config) TransferCooldownDuration() time.Duration {
	return time.Duration(c.TransferCooldown) * time.Second
}
