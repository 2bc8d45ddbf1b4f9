package shared

import (
	"errors"
	"fmt"
)

// Domain-specific errors
var (
	// Network errors
	ErrNetworkUnreachable = errors.New("remote service unreachable")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrUnauthorized       = errors.New("session expired or invalid")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameRequired   = errors.New("username is required")

	// Record errors
	ErrRecordNotFound   = errors.New("record not found")
	ErrItemNameRequired = errors.New("item name is required")

	// Price input errors
	ErrMalformedNumeric = errors.New("price is not a finite number")

	// Session store errors
	ErrSessionStorage = errors.New("session storage failure")
)

// FieldError is a field-level rejection from the remote service,
// constructed from the structured error code, not the free-text message.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s (%s)", e.Field, e.Message, e.Code)
}

// RemoteError is a server-side business-rule rejection carrying the
// server-provided detail.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote rejected request (status %d): %s", e.Status, e.Detail)
}
