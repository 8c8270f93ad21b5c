package app

import (
	"errors"
	"fmt"

	"mythoughts/internal/backend"
)

var (
	// ErrUnauthenticated means an operation needed an identity and there
	// was none. The UI returns to the sign-in view.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound is an empty lookup. Profile hydration treats it as
	// defaults; author search shows it as "no user found".
	ErrNotFound = backend.ErrNotFound
)

// ValidationError is an empty or malformed form field. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// BackendError wraps a failure reported by the auth service or the store.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *BackendError) Unwrap() error { return e.Err }

func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

// UserMessage turns err into text suitable for an alert or status line.
func UserMessage(err error) string {
	var ve *ValidationError
	var be *BackendError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in again."
	case errors.As(err, &be):
		return be.Err.Error()
	default:
		return err.Error()
	}
}
