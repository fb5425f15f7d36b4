// Package errors provides structured error types for flowgrid.
//
// Every failure the layout engine reports carries a machine-readable Code so
// callers can react to the kind of failure without parsing messages:
//   - INVALID_ITEM: a malformed input item (the item is dropped, others proceed)
//   - CONFIGURATION: bad options or breakpoints (the operation is aborted)
//   - LOAD_FAILED: image metrics could not be resolved (the item is excluded)
//   - LIFECYCLE: an operation was invoked on a destroyed engine
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidItem, "item %d: missing src", i)
//	if errors.Is(err, errors.ErrCodeInvalidItem) {
//	    // drop the item and continue
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLoad, origErr, "resolve %s", src)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout taxonomy
	ErrCodeInvalidItem   Code = "INVALID_ITEM"
	ErrCodeConfiguration Code = "CONFIGURATION"
	ErrCodeLoad          Code = "LOAD_FAILED"
	ErrCodeLifecycle     Code = "LIFECYCLE"

	// Input errors outside the layout taxonomy
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeNotFound      Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Configuration is shorthand for New(ErrCodeConfiguration, ...).
func Configuration(format string, args ...any) *Error {
	return New(ErrCodeConfiguration, format, args...)
}

// InvalidItem is shorthand for New(ErrCodeInvalidItem, ...).
func InvalidItem(format string, args ...any) *Error {
	return New(ErrCodeInvalidItem, format, args...)
}

// ErrDestroyed is returned by every engine operation after Destroy.
var ErrDestroyed = New(ErrCodeLifecycle, "engine has been destroyed")
