package airwallex

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/alexjbarnes/airwallex-go/internal/secret"
)

const (
	// DefaultAPIVersion is the x-api-version header sent with every request.
	DefaultAPIVersion = "2024-09-27"

	// DefaultTimeout is the request timeout for the default HTTP client.
	DefaultTimeout = 30 * time.Second

	// DefaultTokenRefreshBuffer is how long before real expiry a token is
	// treated as expired, so refresh happens before in-flight requests
	// start failing with stale tokens.
	DefaultTokenRefreshBuffer = 300 * time.Second
)

// Environment selects which Airwallex API host the client talks to.
type Environment int

const (
	// Sandbox is the demo environment for testing.
	Sandbox Environment = iota
	// Production is the live environment.
	Production
)

// BaseURL returns the API base URL for the environment.
func (e Environment) BaseURL() string {
	if e == Production {
		return "https://api.airwallex.com"
	}

	return "https://api-demo.airwallex.com"
}

// String returns the canonical name of the environment.
func (e Environment) String() string {
	if e == Production {
		return "production"
	}

	return "sandbox"
}

// ParseEnvironment parses an environment name. Accepted values are
// "sandbox", "demo" and "test" for Sandbox, and "production", "prod"
// and "live" for Production.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(s) {
	case "sandbox", "demo", "test":
		return Sandbox, nil
	case "production", "prod", "live":
		return Production, nil
	default:
		return Sandbox, fmt.Errorf("invalid environment %q: expected 'sandbox' or 'production'", s)
	}
}

// Config holds everything needed to construct a Client.
type Config struct {
	// ClientID is the API client ID sent in the x-client-id login header.
	ClientID string

	// APIKey is the API key sent in the x-api-key login header. It is
	// wrapped so it cannot leak through logs or default formatting.
	APIKey secret.String

	// Environment selects the API host. Defaults to Sandbox.
	Environment Environment

	// APIVersion overrides DefaultAPIVersion when set.
	APIVersion string

	// Timeout for the default HTTP client. Ignored when the caller
	// supplies their own http.Client. Defaults to DefaultTimeout.
	Timeout time.Duration

	// TokenRefreshBuffer overrides DefaultTokenRefreshBuffer when set.
	TokenRefreshBuffer time.Duration

	// OnBehalfOf is an optional connected-account ID stamped on every
	// request as the x-on-behalf-of header.
	OnBehalfOf string

	// Logger receives debug logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// envConfig is the raw environment-variable view of a Config.
type envConfig struct {
	ClientID    string        `env:"AIRWALLEX_CLIENT_ID"`
	APIKey      secret.String `env:"AIRWALLEX_API_KEY"`
	Environment string        `env:"AIRWALLEX_ENVIRONMENT" envDefault:"sandbox"`
}

// FromEnv reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses:
//
//   - AIRWALLEX_CLIENT_ID (required)
//   - AIRWALLEX_API_KEY (required)
//   - AIRWALLEX_ENVIRONMENT ("sandbox" or "production", default "sandbox")
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	raw := &envConfig{}
	if err := env.Parse(raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	environment, err := ParseEnvironment(raw.Environment)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClientID:    raw.ClientID,
		APIKey:      raw.APIKey,
		Environment: environment,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("AIRWALLEX_CLIENT_ID is required")
	}

	if c.APIKey.IsEmpty() {
		return fmt.Errorf("AIRWALLEX_API_KEY is required")
	}

	return nil
}

// withDefaults fills zero-valued optional fields.
func (c *Config) withDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}

	if c.TokenRefreshBuffer == 0 {
		c.TokenRefreshBuffer = DefaultTokenRefreshBuffer
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// BaseURL returns the API base URL for the configured environment.
func (c *Config) BaseURL() string {
	return c.Environment.BaseURL()
}

// String implements fmt.Stringer without exposing the API key.
func (c *Config) String() string {
	return fmt.Sprintf("Config{ClientID: %s, APIKey: %s, Environment: %s}",
		c.ClientID, c.APIKey, c.Environment)
}
