// Package errors defines the failure taxonomy shared by the swap engine and
// its callers. Every failure carries a machine-checkable Kind plus a
// human-readable message; only the api layer translates kinds into HTTP codes.
package errors

import (
	stderrors "errors"
	"net/http"
)

type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindForbidden      Kind = "forbidden"
	KindInvalidRequest Kind = "invalid_request"
	KindConflict       Kind = "conflict" // lost a conditional write; retryable
	KindUnauthorized   Kind = "unauthorized"
	KindInternal       Kind = "internal" // store fault; not retryable as-is
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed. Errors that do not
// carry a kind are treated as internal faults.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to a transport status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
