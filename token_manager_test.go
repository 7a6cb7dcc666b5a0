package airwallex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// newTestManager creates a TokenManager pointed at the given httptest
// server with the default refresh buffer.
func newTestManager(srv *httptest.Server) *TokenManager {
	return &TokenManager{
		baseURL:       srv.URL,
		clientID:      "test_client_id",
		apiKey:        "test_api_key",
		refreshBuffer: DefaultTokenRefreshBuffer,
		httpClient:    srv.Client(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// loginHandler responds to the login endpoint with a token valid for
// an hour, counting how many exchanges happen.
func loginHandler(t *testing.T, logins *atomic.Int64) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, loginPath, r.URL.Path)
		assert.Equal(t, "test_client_id", r.Header.Get("x-client-id"))
		assert.Equal(t, "test_api_key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Empty(t, body, "login request body should be empty")

		logins.Add(1)

		expiry := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
		w.Write([]byte(`{"token":"tok_test","expires_at":"` + expiry + `"}`))
	}
}

func TestTokenManager_Token_LoginExchange(t *testing.T) {
	var logins atomic.Int64
	srv := httptest.NewServer(loginHandler(t, &logins))
	defer srv.Close()

	m := newTestManager(srv)

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok_test", token.BearerValue())
	assert.Equal(t, int64(1), logins.Load())
}

func TestTokenManager_Token_CachedAcrossCalls(t *testing.T) {
	var logins atomic.Int64
	srv := httptest.NewServer(loginHandler(t, &logins))
	defer srv.Close()

	m := newTestManager(srv)

	first, err := m.Token(context.Background())
	require.NoError(t, err)

	second, err := m.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.BearerValue(), second.BearerValue())
	assert.Equal(t, int64(1), logins.Load(), "second call should hit the cache")
}

func TestTokenManager_Token_SingleLoginUnderContention(t *testing.T) {
	var logins atomic.Int64
	srv := httptest.NewServer(loginHandler(t, &logins))
	defer srv.Close()

	m := newTestManager(srv)

	const callers = 50

	tokens := make([]Token, callers)

	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			token, err := m.Token(context.Background())
			if err != nil {
				return err
			}

			tokens[i] = token

			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), logins.Load(), "exactly one login under contention")

	for _, token := range tokens {
		assert.Equal(t, tokens[0].BearerValue(), token.BearerValue())
	}
}

func TestTokenManager_Token_RefreshesExpiredToken(t *testing.T) {
	var logins atomic.Int64
	srv := httptest.NewServer(loginHandler(t, &logins))
	defer srv.Close()

	m := newTestManager(srv)

	// Seed the cache with a token inside the refresh buffer.
	stale := NewToken("tok_stale", time.Now().Add(time.Minute))
	m.token = &stale

	token, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok_test", token.BearerValue())
	assert.Equal(t, int64(1), logins.Load())
}

func TestTokenManager_Invalidate_ForcesRelogin(t *testing.T) {
	var logins atomic.Int64
	srv := httptest.NewServer(loginHandler(t, &logins))
	defer srv.Close()

	m := newTestManager(srv)

	_, err := m.Token(context.Background())
	require.NoError(t, err)

	m.Invalidate()

	_, err = m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), logins.Load())
}

func TestTokenManager_Login_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"unauthorized","message":"bad key"}`))
	}))
	defer srv.Close()

	m := newTestManager(srv)

	_, err := m.Token(context.Background())
	require.Error(t, err)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "invalid credentials")
	assert.Contains(t, authErr.Message, "bad key")
}

func TestTokenManager_Login_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m := newTestManager(srv)

	_, err := m.Token(context.Background())
	require.Error(t, err)

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Zero(t, rle.RetryAfter, "login path has no retry-after hint")
	assert.True(t, IsRetryable(err))
}

func TestTokenManager_Login_StructuredAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"invalid_argument","message":"client id malformed","trace_id":"tr_123"}`))
	}))
	defer srv.Close()

	m := newTestManager(srv)

	_, err := m.Token(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid_argument", apiErr.Code)
	assert.Equal(t, "client id malformed", apiErr.Message)
	assert.Equal(t, "tr_123", apiErr.TraceID)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestTokenManager_Login_UnparseableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`Bad Gateway`))
	}))
	defer srv.Close()

	m := newTestManager(srv)

	_, err := m.Token(context.Background())
	require.Error(t, err)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "502")
	assert.Contains(t, authErr.Message, "Bad Gateway")
}

func TestTokenManager_Login_FailurePropagatesWithoutRetry(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := newTestManager(srv)

	_, err := m.Token(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(1), attempts.Load(), "login failures are not retried internally")
}

func TestTokenManager_Token_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t, &atomic.Int64{}))
	defer srv.Close()

	m := newTestManager(srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Token(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
