// Package airwallex is a client for the Airwallex REST API.
//
// A Client authenticates with an API client ID and key, caches the
// resulting bearer token, and refreshes it automatically before expiry.
// Webhook signature verification lives in the webhooks subpackage.
//
//	client, err := airwallex.NewClientFromEnv()
//	if err != nil {
//		// ...
//	}
//	balances, err := client.Balances().Current(ctx)
package airwallex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxResponseBytes caps response body reads to prevent a misbehaving
// server from consuming unbounded memory.
const maxResponseBytes = 1024 * 1024

// Client talks to the Airwallex REST API. It stamps every request with
// a bearer token from its TokenSource and classifies error responses.
// Safe for concurrent use.
type Client struct {
	cfg        *Config
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

// NewClient creates a client with the given configuration. Zero-valued
// optional fields get defaults (sandbox environment, 30s timeout,
// 5 minute token refresh buffer, slog.Default logger).
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.withDefaults()

	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &Client{
		cfg:        cfg,
		baseURL:    cfg.BaseURL(),
		httpClient: httpClient,
		tokens:     NewTokenManager(cfg, httpClient),
		logger:     cfg.Logger,
	}, nil
}

// NewClientFromEnv creates a client from environment variables.
// See FromEnv for the expected variables.
func NewClientFromEnv() (*Client, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	return NewClient(cfg)
}

// BaseURL returns the API base URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIVersion returns the configured API version.
func (c *Client) APIVersion() string {
	return c.cfg.APIVersion
}

// get sends a GET request and decodes the response into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// post sends a JSON POST request and decodes the response into result.
// A nil body sends an empty request body; a nil result skips decoding.
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

// do executes one authenticated API request.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquiring token: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", token.BearerValue())
	req.Header.Set("x-api-version", c.cfg.APIVersion)

	if c.cfg.OnBehalfOf != "" {
		req.Header.Set("x-on-behalf-of", c.cfg.OnBehalfOf)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.classifyError(resp, respBody, path)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response from %s: %w", path, err)
		}
	}

	return nil
}

// classifyError maps a non-2xx response to a typed error. A 401 on an
// authenticated call means the token was revoked or expired early, so
// the cached token is invalidated before surfacing the error; the next
// request will re-login lazily.
func (c *Client) classifyError(resp *http.Response, body []byte, path string) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound

	case http.StatusTooManyRequests:
		var retryAfter time.Duration
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		}

		return &RateLimitError{RetryAfter: retryAfter}

	case http.StatusUnauthorized:
		c.tokens.Invalidate()
		c.logger.Debug("request unauthorized, token invalidated",
			slog.String("path", path),
		)

		return &AuthenticationError{
			Message: "request unauthorized: " + string(body),
		}

	default:
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
			apiErr.Status = resp.StatusCode

			return &apiErr
		}

		return &APIError{
			Code:    strconv.Itoa(resp.StatusCode),
			Message: string(body),
			Status:  resp.StatusCode,
		}
	}
}

// Balances accesses the Balances resource.
func (c *Client) Balances() *Balances {
	return &Balances{client: c}
}

// Transfers accesses the Transfers resource.
func (c *Client) Transfers() *Transfers {
	return &Transfers{client: c}
}
