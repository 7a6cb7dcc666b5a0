package airwallex

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alexjbarnes/airwallex-go/internal/secret"
)

// Token is a bearer credential issued by the authentication endpoint.
// Tokens are immutable; a refresh produces a new Token value. The raw
// value never appears in logs or default formatting.
type Token struct {
	value     secret.String
	expiresAt time.Time
}

// NewToken creates a token with the given value and expiry.
func NewToken(value string, expiresAt time.Time) Token {
	return Token{
		value:     secret.New(value),
		expiresAt: expiresAt,
	}
}

// BearerValue returns the Authorization header value for the token.
func (t Token) BearerValue() string {
	return "Bearer " + t.value.Expose()
}

// ExpiresAt returns when the token expires.
func (t Token) ExpiresAt() time.Time {
	return t.expiresAt
}

// ExpiredWithin reports whether the token is expired or will expire
// within the given buffer, i.e. now+buffer >= expiresAt.
func (t Token) ExpiredWithin(buffer time.Duration) bool {
	return !time.Now().Add(buffer).Before(t.expiresAt)
}

// String implements fmt.Stringer without exposing the token value.
// fmt cannot invoke the secret wrapper's redaction on an unexported
// field, so Token redacts itself.
func (t Token) String() string {
	return fmt.Sprintf("Token{value: [REDACTED], expires_at: %s}", t.expiresAt.Format(time.RFC3339))
}

// GoString implements fmt.GoStringer so %#v does not leak the value.
func (t Token) GoString() string {
	return t.String()
}

// LogValue implements slog.LogValuer so structured logs carry only the
// expiry.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("value", "[REDACTED]"),
		slog.Time("expires_at", t.expiresAt),
	)
}
