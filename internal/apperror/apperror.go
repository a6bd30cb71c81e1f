package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	InvalidCredential
	Unauthorized
	NotFound
	InvalidInput
	InvalidOperation
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case InvalidCredential:
		return "invalid_credential"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case InvalidInput:
		return "invalid_input"
	case InvalidOperation:
		return "invalid_operation"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a Kind, a client facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to err.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of err. Errors not created by this package are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// HTTPStatus maps a Kind onto the status code returned to clients.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidCredential, Unauthorized:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidInput, InvalidOperation, Conflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to clients for err. Internal errors carry
// their underlying cause.
func Message(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return err.Error()
	}
	if ae.Kind == Internal || ae.Message == "" {
		return ae.Error()
	}
	return ae.Message
}
