package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error into the small taxonomy the API
// exposes. Every kind maps to exactly one HTTP status.
type Kind int

const (
	// Internal is infrastructure failure: store unreachable, signing broken.
	Internal Kind = iota
	// Validation is malformed or missing caller input.
	Validation
	// Conflict is a uniqueness violation on create.
	Conflict
	// Unauthorized covers bad credentials and invalid, expired or reused tokens.
	Unauthorized
	// NotFound is a referenced record that does not exist.
	NotFound
)

// Error carries a kind, a caller-safe message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind with a caller-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a kinded error. The cause is never sent to
// clients; only Message leaves the process.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err. Anything that is not an *Error is
// treated as Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// HTTPStatus maps a kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
