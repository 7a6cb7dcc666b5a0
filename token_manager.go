package airwallex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// loginPath is the unauthenticated endpoint that exchanges API
// credentials for a bearer token.
const loginPath = "/api/v1/authentication/login"

// TokenSource hands out a currently-valid bearer token and supports
// explicit invalidation. *TokenManager is the production implementation.
type TokenSource interface {
	// Token returns a valid token, performing a login exchange if the
	// cached one is missing or close to expiry.
	Token(ctx context.Context) (Token, error)

	// Invalidate discards the cached token so the next Token call
	// performs a fresh login. Called after an authenticated request
	// comes back 401.
	Invalidate()
}

// loginResponse is the body of a successful login exchange.
type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenManager caches a bearer token and refreshes it via the login
// endpoint when it is missing or within the refresh buffer of expiry.
// It is safe for concurrent use; under contention exactly one caller
// performs the network login while the rest wait on the lock.
type TokenManager struct {
	baseURL       string
	clientID      string
	apiKey        string
	refreshBuffer time.Duration
	httpClient    *http.Client
	logger        *slog.Logger

	mu    sync.RWMutex
	token *Token
}

// NewTokenManager creates a token manager for the given configuration.
// The config must already have defaults applied via a Client, or be
// fully populated by the caller.
func NewTokenManager(cfg *Config, httpClient *http.Client) *TokenManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	refreshBuffer := cfg.TokenRefreshBuffer
	if refreshBuffer == 0 {
		refreshBuffer = DefaultTokenRefreshBuffer
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &TokenManager{
		baseURL:       cfg.BaseURL(),
		clientID:      cfg.ClientID,
		apiKey:        cfg.APIKey.Expose(),
		refreshBuffer: refreshBuffer,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// Token returns a valid token, logging in if necessary.
//
// The hot path takes only a read lock: a cached token outside the
// refresh buffer is copied and returned without blocking other readers.
// Otherwise the write lock is taken and the cache re-checked, since
// another caller may have refreshed while this one waited. Only when the
// second check also fails does a single login run, with the write lock
// held across the network call so the check and store are atomic.
func (m *TokenManager) Token(ctx context.Context) (Token, error) {
	m.mu.RLock()
	if m.token != nil && !m.token.ExpiredWithin(m.refreshBuffer) {
		token := *m.token
		m.mu.RUnlock()

		return token, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != nil && !m.token.ExpiredWithin(m.refreshBuffer) {
		return *m.token, nil
	}

	token, err := m.login(ctx)
	if err != nil {
		return Token{}, err
	}

	m.token = &token
	m.logger.Debug("token refreshed",
		slog.Time("expires_at", token.ExpiresAt()),
	)

	return token, nil
}

// Invalidate discards the cached token. The next Token call re-logins
// lazily; nothing happens here beyond clearing the slot.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()

	m.logger.Debug("token invalidated")
}

// login performs the credential exchange. Failures are classified but
// never retried here.
func (m *TokenManager) login(ctx context.Context) (Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+loginPath, strings.NewReader(""))
	if err != nil {
		return Token{}, fmt.Errorf("creating login request: %w", err)
	}

	req.Header.Set("x-client-id", m.clientID)
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("sending login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Token{}, fmt.Errorf("reading login response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var login loginResponse
		if err := json.Unmarshal(body, &login); err != nil {
			return Token{}, fmt.Errorf("decoding login response: %w", err)
		}

		return NewToken(login.Token, login.ExpiresAt), nil

	case resp.StatusCode == http.StatusUnauthorized:
		return Token{}, &AuthenticationError{
			Message: "invalid credentials: " + string(body),
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		// The login endpoint does not expose a Retry-After hint.
		return Token{}, &RateLimitError{}

	default:
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
			apiErr.Status = resp.StatusCode

			return Token{}, &apiErr
		}

		return Token{}, &AuthenticationError{
			Message: fmt.Sprintf("login failed with status %d: %s", resp.StatusCode, body),
		}
	}
}
