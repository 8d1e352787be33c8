package types

import "log/slog"

// redactedPlaceholder replaces secret values in logs and serialization.
const redactedPlaceholder = "***REDACTED***"

// SecretString is a string type that prevents accidental logging or
// serialization of sensitive values (database URLs, provider API keys). It
// overrides String(), MarshalJSON(), and LogValue() so secrets never leak
// through fmt functions, JSON output, or structured log entries.
//
// Use Unmask() to retrieve the raw plaintext when it is genuinely needed
// (e.g. building an Authorization header or a connection string).
type SecretString string

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedPlaceholder + `"`), nil
}

// LogValue implements slog.LogValuer so secrets are masked even when a
// SecretString is passed to the structured logger directly.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redactedPlaceholder)
}

// Unmask returns the raw plaintext value of the secret. Usage should be
// limited to the call sites that hand the value to a driver or HTTP client.
func (s SecretString) Unmask() string {
	return string(s)
}
