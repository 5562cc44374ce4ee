// Package errors defines the failures the delight command reports, each with
// a type, a message and optional context.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Error types for different categories of failures
const (
	// Input/File errors
	ErrInputRead   = "INPUT_READ_ERROR"
	ErrOutputWrite = "OUTPUT_WRITE_ERROR"

	// Translation errors
	ErrScan      = "SCAN_ERROR"
	ErrTranslate = "TRANSLATE_ERROR"
	ErrStale     = "STALE_OUTPUT"

	// Configuration errors
	ErrConfigRead       = "CONFIG_READ_ERROR"
	ErrConfigValidation = "CONFIG_VALIDATION_ERROR"
	ErrVersionMismatch  = "VERSION_MISMATCH"

	// System errors
	ErrWatch = "WATCH_ERROR"
)

// Process exit codes
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitTranslation = 3
)

// Error represents a structured error with type and context
type Error struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(errorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	e.Context[key] = value
	return e
}

// ContextString renders the context as sorted key=value pairs.
func (e *Error) ContextString() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.Context[k])
	}
	return strings.Join(parts, " ")
}

// ExitCode maps the error type to the process exit status.
func (e *Error) ExitCode() int {
	switch e.Type {
	case ErrScan, ErrTranslate:
		return ExitTranslation
	case ErrConfigValidation, ErrVersionMismatch:
		return ExitUsage
	default:
		return ExitFailure
	}
}

// Helper functions for common error scenarios

// NewInputError creates an input-related error
func NewInputError(path string, cause error) *Error {
	return Wrap(ErrInputRead, fmt.Sprintf("cannot read '%s'", path), cause).
		WithContext("file", path)
}

// NewOutputError creates an error for a file that could not be written
func NewOutputError(path string, cause error) *Error {
	return Wrap(ErrOutputWrite, fmt.Sprintf("cannot write '%s'", path), cause).
		WithContext("file", path)
}

// NewTranslateError creates a translation error for a source file
func NewTranslateError(path string, cause error) *Error {
	return Wrap(ErrTranslate, fmt.Sprintf("cannot translate '%s'", path), cause).
		WithContext("file", path)
}

// NewScanError creates an error for source text the scanner rejected
func NewScanError(path string, cause error) *Error {
	return Wrap(ErrScan, fmt.Sprintf("cannot scan '%s'", path), cause).
		WithContext("file", path)
}

// NewStaleError reports generated output that no longer matches its source
func NewStaleError(source, output, reason string) *Error {
	return New(ErrStale, fmt.Sprintf("'%s' is out of date: %s", output, reason)).
		WithContext("source", source).
		WithContext("output", output)
}

// NewConfigError creates a configuration error
func NewConfigError(errorType, path string, cause error) *Error {
	return Wrap(errorType, fmt.Sprintf("invalid configuration '%s'", path), cause).
		WithContext("file", path)
}

// Describe renders err for the command line, with the context of a
// structured error appended in brackets.
func Describe(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		if ctx := e.ContextString(); ctx != "" {
			return err.Error() + " [" + ctx + "]"
		}
	}
	return err.Error()
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, errorType string) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}

// ExitCode returns the exit status for any error; nil is success.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.ExitCode()
	}
	return ExitFailure
}
