// Package apperr defines the error taxonomy shared by all components.
// Every error carries a machine-stable code and a human-readable message;
// persistence and collaborator failures collapse to CodeInternal without
// leaking engine detail.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a machine-stable error reason
type Code string

const (
	CodeValidation        Code = "validation"
	CodeNotFound          Code = "not_found"
	CodeIllegalTransition Code = "illegal_transition"
	CodeForbidden         Code = "forbidden"
	CodeUnauthorized      Code = "unauthorized"
	CodeConflict          Code = "conflict"
	CodeInternal          Code = "internal"
)

// Error is the single error value exchanged between layers
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an error with an explicit code
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validationf reports a missing or malformed field
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports an absent entity
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// IllegalTransitionf reports a status change rejected by the transition table
func IllegalTransitionf(format string, args ...any) *Error {
	return &Error{Code: CodeIllegalTransition, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports a failed role or ownership check
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// Unauthorized reports a missing or invalid credential
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// Conflictf reports a uniqueness violation
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an opaque persistence or collaborator failure.
// The cause is kept for logs, never for the wire.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-visible message from an error chain
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Is reports whether err carries the given code
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
