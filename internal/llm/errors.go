package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var (
	// ErrRateLimited means the provider throttled the request. Retryable.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable means the provider failed or could not be reached.
	// Retryable.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrAuth means the provider refused the API key.
	ErrAuth = errors.New("credentials rejected")

	// ErrRejected means the provider refused the request itself, e.g. an
	// unknown model.
	ErrRejected = errors.New("request rejected")

	// ErrBadOutput means the output did not match the requested schema.
	ErrBadOutput = errors.New("output does not match schema")

	// ErrTruncated means generation stopped at the token limit. A bigger
	// budget or a smaller batch is needed; retrying as is will not help.
	ErrTruncated = errors.New("output truncated at token limit")
)

// Error describes a failed generation. Kind is one of the sentinels above.
type Error struct {
	Provider   string
	Kind       error
	StatusCode int
	RetryAfter time.Duration
	Content    json.RawMessage
	Err        error
}

func (e *Error) Error() string {
	msg := e.Provider + ": " + e.Kind.Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// httpError classifies a provider API error by its status code. Errors
// without a status are transport failures.
func httpError(provider string, status int, header http.Header, err error) *Error {
	e := &Error{Provider: provider, StatusCode: status, Err: err}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = ErrRateLimited
		e.RetryAfter = retryAfter(header)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = ErrAuth
	case status >= 400 && status < 500:
		e.Kind = ErrRejected
	default:
		e.Kind = ErrUnavailable
	}
	return e
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
