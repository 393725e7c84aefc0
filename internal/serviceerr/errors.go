package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeInvalidRequest     Code = "invalid_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeSessionExpired     Code = "session_expired"
	CodeStateMismatch      Code = "state_mismatch"
	CodeNotFound           Code = "not_found"
	CodeMethodNotAllowed   Code = "method_not_allowed"
	CodeUpstreamFailure    Code = "upstream_failure"
	CodeConfigurationError Code = "configuration_error"
	CodeUnknown            Code = "unknown"
)

// Error is returned by the service layer and rendered by the HTTP handlers.
// Description is the message shown to the client.
type Error struct {
	Err         Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}
	return string(e.Err) + ": " + e.Description
}

func (e *Error) HTTPStatus() int {
	switch e.Err {
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeSessionExpired:
		return http.StatusUnauthorized
	case CodeStateMismatch:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether target is a service error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == e.Err
}

// WithDescription returns a copy of e carrying the given client message.
func (e *Error) WithDescription(description string) *Error {
	return &Error{Err: e.Err, Description: description}
}

var (
	ErrInvalidRequest   = &Error{Err: CodeInvalidRequest}
	ErrUnauthorized     = &Error{Err: CodeUnauthorized, Description: "Unauthorized. Please login."}
	ErrSessionExpired   = &Error{Err: CodeSessionExpired, Description: "Invalid or expired session."}
	ErrStateMismatch    = &Error{Err: CodeStateMismatch, Description: "Invalid state. CSRF attack detected?"}
	ErrNotFound         = &Error{Err: CodeNotFound, Description: "not found"}
	ErrMethodNotAllowed = &Error{Err: CodeMethodNotAllowed, Description: "Method not allowed"}
	ErrUpstreamFailure  = &Error{Err: CodeUpstreamFailure, Description: "upstream request failed"}
	ErrConfiguration    = &Error{Err: CodeConfigurationError, Description: "Server configuration error."}
	ErrUnknown          = &Error{Err: CodeUnknown, Description: "unknown error"}
)

// From extracts a service error from err, falling back to ErrUnknown.
func From(err error) *Error {
	var serviceErr *Error
	if !errors.As(err, &serviceErr) {
		return ErrUnknown
	}
	return serviceErr
}
