// Package errors provides structured error types for fgraph.
//
// This package defines error codes and types that enable:
//   - Consistent handling of fatal load and structural failures
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// Recoverable domain problems (an element that cannot be found, a pattern
// without matches) are not errors in this sense; they are recorded as
// diagnostics by package diag and processing continues.
//
// # Error Codes
//
// Codes fall into the fatal taxonomy of a run:
//   - Load-abort: BASE_URL_MISMATCH, DUPLICATE_*, UNKNOWN_ITEM, INVALID_SHAPE
//   - Structural: GRAPH_CYCLE, AMBIGUOUS_LINK
//   - Other: NOT_FOUND, INVALID_INPUT, INVALID_CONFIG, INTERNAL_ERROR
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateNode, "node %q already registered", name)
//	if errors.Is(err, errors.ErrCodeDuplicateNode) {
//	    // Handle duplicate registration
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidShape, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Load-abort errors
	ErrCodeBaseURLMismatch   Code = "BASE_URL_MISMATCH"
	ErrCodeDuplicateNode     Code = "DUPLICATE_NODE"
	ErrCodeDuplicateAnchor   Code = "DUPLICATE_ANCHOR"
	ErrCodeDuplicateResource Code = "DUPLICATE_RESOURCE"
	ErrCodeUnknownItem       Code = "UNKNOWN_ITEM"
	ErrCodeInvalidShape      Code = "INVALID_SHAPE"

	// Structural errors
	ErrCodeCycle         Code = "GRAPH_CYCLE"
	ErrCodeAmbiguousLink Code = "AMBIGUOUS_LINK"

	// Input errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

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
