package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unified error code across jsonsage.
type ErrorCode string

// Input error codes. Malformed or wrong-shaped caller input.
const (
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrInvalidJSON  ErrorCode = "INVALID_JSON"
)

// Remote service error codes. Failures crossing the process boundary.
const (
	ErrAPIError       ErrorCode = "API_ERROR"
	ErrNetworkError   ErrorCode = "NETWORK_ERROR"
	ErrAuthentication ErrorCode = "AUTHENTICATION"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrUpstreamError  ErrorCode = "UPSTREAM_ERROR"
)

// Local error codes
const (
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
	ErrInternalError        ErrorCode = "INTERNAL_ERROR"
	ErrUnknown              ErrorCode = "UNKNOWN_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// NewInputError reports caller input that has the wrong shape.
func NewInputError(message string) *Error {
	return NewError(ErrInvalidInput, message).WithHTTPStatus(http.StatusBadRequest)
}

// NewInvalidJSONError reports text that could not be parsed as JSON.
func NewInvalidJSONError(cause error) *Error {
	return NewError(ErrInvalidJSON, "Invalid JSON").
		WithHTTPStatus(http.StatusBadRequest).
		WithCause(cause)
}

// NewRemoteError reports a failed exchange with the remote generation service.
func NewRemoteError(code ErrorCode, message string) *Error {
	return NewError(code, message).WithHTTPStatus(http.StatusBadGateway)
}

// AsError extracts a *Error from the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsInputError reports whether err (or any error it wraps) is an input error.
func IsInputError(err error) bool {
	switch GetErrorCode(err) {
	case ErrInvalidInput, ErrInvalidJSON:
		return true
	}
	return false
}

// IsRemoteServiceError reports whether err originates from the remote service.
func IsRemoteServiceError(err error) bool {
	switch GetErrorCode(err) {
	case ErrAPIError, ErrNetworkError, ErrAuthentication, ErrRateLimited, ErrUpstreamError:
		return true
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}
