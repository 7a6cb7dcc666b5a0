// Package webhooks verifies Airwallex webhook signatures.
//
// Airwallex signs webhook deliveries so receivers can confirm they were
// sent by Airwallex. Two schemes exist:
//
// Standard webhook events carry x-timestamp (Unix milliseconds) and
// x-signature (lowercase hex) headers; the signature is
// HMAC-SHA256(secret, timestamp || payload).
//
// Remote authorization requests for card issuing carry x-nonce
// (format "{timestamp_ms}.{random}") and x-signature (standard base64
// with padding) headers; the signature is HMAC-SHA256(secret, nonce).
//
// All functions are pure and safe for concurrent use. Every failure is
// terminal: a verification error means reject the webhook, never retry.
package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the maximum accepted webhook age (5 minutes).
const DefaultTolerance = 300 * time.Second

// clockSkewGrace is how far in the future a timestamp may be and still
// be accepted, absorbing clock drift between sender and verifier.
// Fixed, not caller-configurable.
const clockSkewGrace = 30 * time.Second

// Verification failure modes. The distinction lets callers log "wrong
// secret or tampered payload" differently from "stale or replayed
// delivery", but every one of them is equally fatal to processing.
var (
	// ErrInvalidSignature means the signature does not match the payload.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrTimestampInFuture means the timestamp is further in the future
	// than the clock-skew grace period allows.
	ErrTimestampInFuture = errors.New("webhook timestamp is in the future")

	// ErrInvalidTimestamp means the timestamp did not parse as Unix
	// milliseconds.
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")

	// ErrInvalidNonce means the nonce is not "{timestamp}.{random}".
	ErrInvalidNonce = errors.New("invalid webhook nonce")
)

// TimestampTooOldError means the delivery is outside the replay window.
type TimestampTooOldError struct {
	// Age is how old the webhook is.
	Age time.Duration
	// Tolerance is the maximum accepted age.
	Tolerance time.Duration
}

func (e *TimestampTooOldError) Error() string {
	return fmt.Sprintf("webhook timestamp too old: %d seconds (tolerance: %d seconds)",
		int64(e.Age.Seconds()), int64(e.Tolerance.Seconds()))
}

// VerifySignature verifies a standard webhook signature with the
// default tolerance.
//
// secret is the webhook secret for the notification URL, timestamp the
// x-timestamp header (Unix milliseconds), payload the raw request body
// exactly as received, and signature the x-signature header. Any
// re-serialization of the body before verification breaks the signature.
func VerifySignature(secret, timestamp string, payload []byte, signature string) error {
	return VerifySignatureWithTolerance(secret, timestamp, payload, signature, DefaultTolerance)
}

// VerifySignatureWithTolerance verifies a standard webhook signature,
// accepting deliveries up to tolerance old.
func VerifySignatureWithTolerance(secret, timestamp string, payload []byte, signature string, tolerance time.Duration) error {
	if err := verifyTimestamp(timestamp, tolerance); err != nil {
		return err
	}

	expected := ComputeSignature(secret, timestamp, payload)
	if !constantTimeCompare(expected, signature) {
		return ErrInvalidSignature
	}

	return nil
}

// ComputeSignature computes the expected standard webhook signature:
// lowercase hex HMAC-SHA256 over the timestamp immediately followed by
// the payload, no separator. Useful for generating test fixtures.
// It performs no timestamp validation.
func ComputeSignature(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))

	// value_to_digest = timestamp + payload, exactly as the provider
	// signs it.
	mac.Write([]byte(timestamp))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyRemoteAuthSignature verifies a remote authorization webhook
// signature (card issuing) with the default tolerance.
//
// sharedSecret is the configured remote-authorization secret, nonce the
// x-nonce header ("{timestamp_ms}.{random}"), and signature the
// x-signature header (standard base64 with padding).
func VerifyRemoteAuthSignature(sharedSecret, nonce, signature string) error {
	return VerifyRemoteAuthSignatureWithTolerance(sharedSecret, nonce, signature, DefaultTolerance)
}

// VerifyRemoteAuthSignatureWithTolerance verifies a remote
// authorization signature, accepting deliveries up to tolerance old.
func VerifyRemoteAuthSignatureWithTolerance(sharedSecret, nonce, signature string, tolerance time.Duration) error {
	// The portion before the first "." must be a millisecond timestamp.
	// A malformed nonce is its own failure mode, not a mismatch.
	timestamp, _, _ := strings.Cut(nonce, ".")
	if _, err := strconv.ParseUint(timestamp, 10, 64); err != nil {
		return ErrInvalidNonce
	}

	if err := verifyTimestamp(timestamp, tolerance); err != nil {
		return err
	}

	// The HMAC message is the entire nonce, not just its timestamp.
	expected := ComputeRemoteAuthSignature(sharedSecret, nonce)
	if !constantTimeCompare(expected, signature) {
		return ErrInvalidSignature
	}

	return nil
}

// ComputeRemoteAuthSignature computes the expected remote authorization
// signature: standard base64 HMAC-SHA256 over the full nonce string.
func ComputeRemoteAuthSignature(sharedSecret, nonce string) string {
	mac := hmac.New(sha256.New, []byte(sharedSecret))
	mac.Write([]byte(nonce))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// verifyTimestamp checks a millisecond Unix timestamp against the
// replay window. Fail closed: anything unparseable is rejected.
func verifyTimestamp(timestampMs string, tolerance time.Duration) error {
	ms, err := strconv.ParseUint(timestampMs, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}

	webhookTime := time.UnixMilli(int64(ms))
	now := time.Now()

	if webhookTime.After(now.Add(clockSkewGrace)) {
		return ErrTimestampInFuture
	}

	if age := now.Sub(webhookTime); age > tolerance {
		return &TimestampTooOldError{
			Age:       age,
			Tolerance: tolerance,
		}
	}

	return nil
}

// constantTimeCompare compares two signatures without a timing side
// channel. Unequal lengths short-circuit to false, which leaks only the
// length; signature lengths are fixed by construction. For equal
// lengths the comparison touches every byte regardless of where the
// inputs first differ.
func constantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
