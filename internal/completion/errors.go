package completion

import (
	"fmt"
	"strings"
)

// ErrorKind is the shared taxonomy every provider's failures collapse into.
// Callers must not retry InvalidCredentials; RateLimited and ServiceUnavailable
// are safe to retry with backoff. The client itself never retries — the
// classification is surfaced for the caller to decide.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindRateLimited        ErrorKind = "rate_limited"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindContextTooLong     ErrorKind = "context_too_long"
	KindUnknown            ErrorKind = "unknown"
)

type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the failed call.
func (e *ProviderError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindServiceUnavailable
}

// classify maps an HTTP-ish status code plus the underlying error message into
// the taxonomy. Providers whose SDKs expose status codes funnel through here;
// message sniffing covers providers that bury context-length failures in a 400.
func classify(provider string, status int, err error) *ProviderError {
	kind := KindUnknown
	msg := strings.ToLower(err.Error())

	switch {
	case status == 401 || status == 403:
		kind = KindInvalidCredentials
	case status == 429:
		kind = KindRateLimited
	case status == 413:
		kind = KindContextTooLong
	case status >= 500:
		kind = KindServiceUnavailable
	case strings.Contains(msg, "context length") ||
		strings.Contains(msg, "context_length") ||
		strings.Contains(msg, "too many tokens") ||
		strings.Contains(msg, "prompt is too long") ||
		strings.Contains(msg, "maximum context"):
		kind = KindContextTooLong
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "permission denied"):
		kind = KindInvalidCredentials
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota"):
		kind = KindRateLimited
	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused"):
		kind = KindServiceUnavailable
	}

	return &ProviderError{Provider: provider, Kind: kind, Status: status, Err: err}
}
