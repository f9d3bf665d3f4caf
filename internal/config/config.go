// Package config loads the server configuration from environment
// variables. A .env file in the working directory is honoured when
// present, which keeps local development close to deployment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server needs. The zero value is not
// usable; call Load.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"lastseen"`
	Env     string `env:"ENV" envDefault:"DEV"`
	Port    string `env:"PORT" envDefault:"8080"`

	// LogLevel is any level accepted by zerolog.ParseLevel.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DomainName is the public host the service is reached on. It scopes
	// the auth cookies and forms the OAuth redirect URL.
	DomainName string `env:"DOMAIN_NAME"`

	// DBPath points at the sqlite directory database holding the
	// web_users and api_keys tables.
	DBPath string `env:"DB_PATH"`

	// RedirectAfterAuth is where the browser is sent once a login
	// completes.
	RedirectAfterAuth string `env:"REDIRECT_AFTER_AUTH" envDefault:"/"`

	OAuth OAuthProvider `envPrefix:"OAUTH_"`

	// AuthWindow bounds how long a started login may take to complete.
	AuthWindow time.Duration `env:"AUTH_WINDOW" envDefault:"5m"`

	// SessionIdleTTL expires sessions that go unused; SessionAbsoluteTTL
	// bounds a session's total lifetime regardless of use.
	SessionIdleTTL     time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SessionAbsoluteTTL time.Duration `env:"SESSION_ABSOLUTE_TTL" envDefault:"24h"`
}

// OAuthProvider describes the external identity provider. Either Issuer
// is set and the endpoints are discovered, or all three endpoint URLs
// are given explicitly.
type OAuthProvider struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`

	Issuer string `env:"ISSUER"`

	AuthURL     string `env:"AUTH_URL"`
	TokenURL    string `env:"TOKEN_URL"`
	UserinfoURL string `env:"USERINFO_URL"`

	Scopes []string `env:"SCOPES" envDefault:"openid,email"`
}

// Load reads configuration from the environment, after loading a .env
// file if one exists. Any validation failure is returned as an error;
// the caller is expected to treat it as fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DomainName == "" {
		return errors.New("DOMAIN_NAME is required")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return errors.New("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required")
	}
	if c.OAuth.Issuer == "" {
		if c.OAuth.AuthURL == "" || c.OAuth.TokenURL == "" || c.OAuth.UserinfoURL == "" {
			return errors.New("either OAUTH_ISSUER or all of OAUTH_AUTH_URL, OAUTH_TOKEN_URL and OAUTH_USERINFO_URL are required")
		}
	}
	if c.AuthWindow <= 0 || c.SessionIdleTTL <= 0 || c.SessionAbsoluteTTL <= 0 {
		return errors.New("auth window and session TTLs must be positive")
	}
	return nil
}

// ListenAddr returns the address for http.Server, normalising a bare
// port number to ":port".
func (c *Config) ListenAddr() string {
	if c.Port == "" {
		return ":8080"
	}
	if c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

// RedirectURL is the OAuth callback registered with the provider.
func (c *Config) RedirectURL() string {
	return fmt.Sprintf("https://%s/api/auth/redirect", c.DomainName)
}
