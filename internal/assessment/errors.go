package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrSelectionInvalid means the service rejected the subject selection.
	ErrSelectionInvalid = errors.New("subject selection rejected by service")

	// ErrUnavailable means the service could not be reached or failed.
	// Callers may retry.
	ErrUnavailable = errors.New("assessment service unavailable")

	// ErrUnauthorized means the service refused the configured credentials.
	ErrUnauthorized = errors.New("not authorized by assessment service")

	// ErrNotFound means the service does not know the referenced entity.
	ErrNotFound = errors.New("not found")
)

// Error describes a failed service call. Kind is one of the sentinel
// errors above, so errors.Is(err, ErrUnavailable) works on an *Error.
type Error struct {
	Op         string
	Kind       error
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
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

// Retryable reports whether err is worth retrying.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
