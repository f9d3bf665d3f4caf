// Package authflow brokers the three-legged OAuth2 authorization-code
// flow, with PKCE, against one configured identity provider. It owns
// the map of in-flight exchanges and guarantees each PKCE verifier is
// consumed at most once.
package authflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/lastseenhq/lastseen/internal/config"
)

const (
	// stateTokenBytes sizes the CSRF state; 32 bytes is far beyond
	// guessable.
	stateTokenBytes = 32

	// providerTimeout bounds every outbound call to the provider so a
	// stalled exchange fails the request instead of hanging a handler.
	providerTimeout = 10 * time.Second

	userinfoBodyLimit = 1 << 20
)

// Coordinator manages login attempts from authorization URL to bearer
// token. Safe for concurrent use.
type Coordinator struct {
	oauth       *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
	window      time.Duration
	pending     pendingStore
	nowTime     func() time.Time
}

// Option modifies a Coordinator at construction time.
type Option func(*Coordinator)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.nowTime = now
	}
}

// WithHTTPClient replaces the client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Coordinator) {
		c.httpClient = client
	}
}

// New builds a Coordinator from configuration. When an issuer is
// configured the provider endpoints are discovered via OIDC; otherwise
// the explicitly configured URLs are used as-is.
func New(ctx context.Context, cfg *config.Config, options ...Option) (*Coordinator, error) {
	endpoint := oauth2.Endpoint{
		AuthURL:  cfg.OAuth.AuthURL,
		TokenURL: cfg.OAuth.TokenURL,
	}
	userinfoURL := cfg.OAuth.UserinfoURL

	if cfg.OAuth.Issuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.OAuth.Issuer)
		if err != nil {
			return nil, fmt.Errorf("discovering provider endpoints: %w", err)
		}
		endpoint = provider.Endpoint()
		userinfoURL = provider.UserInfoEndpoint()
	}

	c := &Coordinator{
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.RedirectURL(),
			Scopes:       cfg.OAuth.Scopes,
		},
		userinfoURL: userinfoURL,
		httpClient:  &http.Client{Timeout: providerTimeout},
		window:      cfg.AuthWindow,
		nowTime:     time.Now,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// BeginLogin starts a fresh login attempt. It returns the provider
// authorization URL for the browser and the CSRF state to bind to it
// via cookie. As a side effect, expired pending exchanges are swept.
func (c *Coordinator) BeginLogin() (authURL, state string) {
	verifier := oauth2.GenerateVerifier()
	state = generateRandomString(stateTokenBytes)

	now := c.nowTime()
	c.pending.put(state, verifier, now)
	c.pending.sweep(now, c.window)

	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), state
}

// CompleteLogin validates the CSRF binding, consumes the matching PKCE
// verifier, and exchanges the authorization code for a bearer token.
// There are no retries: a failed exchange means the user restarts the
// login.
func (c *Coordinator) CompleteLogin(ctx context.Context, csrfCookie, csrfCallback, code string) (string, error) {
	if csrfCookie == "" || csrfCookie != csrfCallback {
		return "", ErrCSRFMismatch
	}

	verifier, ok := c.pending.consume(csrfCookie, c.nowTime(), c.window)
	if !ok {
		return "", ErrUnknownState
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderExchange, err)
	}

	return token.AccessToken, nil
}

// ResolveIdentity asks the provider's userinfo endpoint who the bearer
// token belongs to and returns the email claim.
func (c *Coordinator) ResolveIdentity(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderUserinfo, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderUserinfo, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, userinfoBodyLimit))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProviderUserinfo, err)
	}

	var claims map[string]any
	if err := json.Unmarshal(body, &claims); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedUserinfo, err)
	}

	email, ok := claims["email"].(string)
	if !ok {
		return "", fmt.Errorf("%w: no string email claim", ErrMalformedUserinfo)
	}

	return email, nil
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
