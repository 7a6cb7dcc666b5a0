package airwallex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for HTTP 404 responses.
var ErrNotFound = errors.New("resource not found")

// APIError is a structured error returned by the Airwallex API.
type APIError struct {
	// Code is the API error code, e.g. "invalid_argument" or "not_found".
	Code string `json:"code"`
	// Message is the human-readable error message.
	Message string `json:"message"`
	// TraceID identifies the request when debugging with Airwallex support.
	TraceID string `json:"trace_id,omitempty"`
	// Details carries any additional error payload, unparsed.
	Details json.RawMessage `json:"details,omitempty"`
	// Status is the HTTP status code of the response.
	Status int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%s]: %s", e.Code, e.Message)
}

// AuthenticationError indicates the API rejected the credentials or the
// bearer token. It is not retried automatically.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication error: " + e.Message
}

// RateLimitError indicates an HTTP 429 response. RetryAfter is the delay
// suggested by the API, or zero when the response carried no hint (the
// login endpoint never provides one).
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded"
}

// IsRetryable reports whether the error represents a condition worth
// retrying with backoff: rate limits and transient transport failures.
// Authentication and validation failures are never retryable.
func IsRetryable(err error) bool {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) {
		return timeout.Timeout()
	}

	return false
}

// RetryAfter returns the suggested retry delay for rate-limited errors,
// or zero when the error carries no hint.
func RetryAfter(err error) time.Duration {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter
	}

	return 0
}
