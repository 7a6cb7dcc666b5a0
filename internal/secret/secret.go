// Package secret provides an opaque wrapper for credential strings.
// Wrapped values render as a fixed redaction marker through fmt, slog,
// and JSON encoding; the raw value is only reachable via Expose.
package secret

import "log/slog"

// redacted is what every default representation of a String prints.
const redacted = "[REDACTED]"

// String holds a secret value. The zero value is an empty secret.
type String struct {
	value string
}

// New wraps a raw secret value.
func New(value string) String {
	return String{value: value}
}

// Expose returns the raw secret value.
func (s String) Expose() string {
	return s.value
}

// IsEmpty reports whether the secret is unset.
func (s String) IsEmpty() bool {
	return s.value == ""
}

// String implements fmt.Stringer with a redaction marker.
func (s String) String() string {
	return redacted
}

// GoString implements fmt.GoStringer so %#v does not leak the value.
func (s String) GoString() string {
	return redacted
}

// LogValue implements slog.LogValuer so structured logs never carry
// the raw value.
func (s String) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalJSON redacts the value in JSON output.
func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// UnmarshalText allows env parsing directly into a String field.
func (s *String) UnmarshalText(text []byte) error {
	s.value = string(text)
	return nil
}
