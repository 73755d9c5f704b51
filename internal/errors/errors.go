package errors

import (
	"errors"
	"fmt"
)

// Error code constants surfaced in tool results and CLI exit codes.
const (
	CodeConfigMissing     = "CONFIG_MISSING"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeInsufficientScope = "INSUFFICIENT_SCOPE"
	CodeUpstreamError     = "UPSTREAM_ERROR"
	CodeStackUnavailable  = "STACK_UNAVAILABLE"
	CodeToolgroupNotFound = "TOOLGROUP_NOT_FOUND"
	CodeChatNotFound      = "CHAT_NOT_FOUND"
	CodeInvalidParams     = "INVALID_PARAMS"
	CodeGatewayFailed     = "GATEWAY_FAILED"
	CodeTransportClosed   = "TRANSPORT_CLOSED"
)

// Error represents an ansiblemcp error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	wrapped error
	Code    string
	Message string
}

// Error returns the error message, implementing the error interface.
func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// New creates a new ansiblemcp error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ansiblemcp error that wraps an underlying error.
func Wrap(code string, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		wrapped: err,
	}
}

// Code extracts the error code from an error.
// Returns an empty string if the error is not an ansiblemcp error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var amErr *Error
	if errors.As(err, &amErr) {
		return amErr.Code
	}
	return ""
}

// Is checks if an error has a specific error code.
func Is(err error, code string) bool {
	return Code(err) == code
}

// Convenience constructors for each error code

// ConfigMissing creates a CONFIG_MISSING error for a required setting.
func ConfigMissing(name string) *Error {
	return New(CodeConfigMissing, fmt.Sprintf("%s is required but not configured", name))
}

// Unauthorized creates an UNAUTHORIZED error.
func Unauthorized(reason string) *Error {
	return New(CodeUnauthorized, reason)
}

// TokenExpired creates a TOKEN_EXPIRED error.
func TokenExpired() *Error {
	return New(CodeTokenExpired, "token expired")
}

// InsufficientScope creates an INSUFFICIENT_SCOPE error.
func InsufficientScope(required string) *Error {
	return New(CodeInsufficientScope, fmt.Sprintf("insufficient scope, required: %s", required))
}

// Upstream creates an UPSTREAM_ERROR from a non-2xx API response.
func Upstream(status int, body string) *Error {
	return New(CodeUpstreamError, fmt.Sprintf("upstream returned %d: %s", status, body))
}

// UpstreamWrap creates an UPSTREAM_ERROR wrapping a transport failure.
func UpstreamWrap(err error) *Error {
	return Wrap(CodeUpstreamError, "upstream request failed", err)
}

// StackUnavailable creates a STACK_UNAVAILABLE error.
func StackUnavailable(baseURL string, err error) *Error {
	return Wrap(CodeStackUnavailable, fmt.Sprintf("llama-stack at %q is not reachable", baseURL), err)
}

// ToolgroupNotFound creates a TOOLGROUP_NOT_FOUND error.
func ToolgroupNotFound(id string) *Error {
	return New(CodeToolgroupNotFound, fmt.Sprintf("toolgroup %q is not registered", id))
}

// ChatNotFound creates a CHAT_NOT_FOUND error.
func ChatNotFound(name string) *Error {
	return New(CodeChatNotFound, fmt.Sprintf("no saved conversation named %q", name))
}

// InvalidParams creates an INVALID_PARAMS error.
func InvalidParams(detail string) *Error {
	return New(CodeInvalidParams, detail)
}

// GatewayFailed creates a GATEWAY_FAILED error wrapping the underlying cause.
func GatewayFailed(err error) *Error {
	return Wrap(CodeGatewayFailed, "gateway child process failed", err)
}

// TransportClosed creates a TRANSPORT_CLOSED error.
func TransportClosed() *Error {
	return New(CodeTransportClosed, "transport is closed")
}
