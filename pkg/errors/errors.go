// Package errors provides structured error types for matlayer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly status messages at the command boundary
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure classes of the layer engine:
//   - NO_ACTIVE_CONTEXT: no material (or layer) to operate on
//   - NODE_NOT_FOUND: accessor lookup miss
//   - NAME_COLLISION: a generated name or identity is already taken
//   - DESYNC: stack length and graph node names disagree
//   - INVALID_*: input validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidIndex, "mask index %d out of range", i)
//	if errors.Is(err, errors.ErrCodeInvalidIndex) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDesync, origErr, "reindex layer %d", layer)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Context errors
	ErrCodeNoActiveContext Code = "NO_ACTIVE_CONTEXT"

	// Graph consistency errors
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"
	ErrCodeNameCollision Code = "NAME_COLLISION"
	ErrCodeDesync        Code = "DESYNC"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidIndex Code = "INVALID_INDEX"
	ErrCodeInvalidKind  Code = "INVALID_KIND"
	ErrCodeInvalidName  Code = "INVALID_NAME"

	// Storage errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeStorage  Code = "STORAGE_ERROR"

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

// Recoverable reports whether err belongs to a class the engine absorbs locally
// (lookup misses and identity collisions) rather than surfacing to the user.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeNodeNotFound, ErrCodeNameCollision:
		return true
	}
	return false
}
