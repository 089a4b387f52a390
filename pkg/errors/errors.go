// Package errors provides custom error types for the application.
// It defines domain-specific errors with error codes so that every pipeline
// failure can be traced back to the stage that produced it.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents application error codes
type ErrorCode string

// Error codes for different error categories
const (
	// General errors (1xxx)
	ErrCodeInternal ErrorCode = "E1000"

	// Input errors (2xxx)
	ErrCodeInputRead  ErrorCode = "E2001"
	ErrCodeInputParse ErrorCode = "E2002"

	// Mapping table errors (3xxx)
	ErrCodeMappingFetch  ErrorCode = "E3001"
	ErrCodeMappingStatus ErrorCode = "E3002"
	ErrCodeMappingParse  ErrorCode = "E3003"

	// Render errors (4xxx)
	ErrCodeRender ErrorCode = "E4001"

	// Output errors (5xxx)
	ErrCodeOutputWrite ErrorCode = "E5001"
	ErrCodePDFExport   ErrorCode = "E5002"

	// Traversal errors (6xxx)
	ErrCodeTreeCycle ErrorCode = "E6001"
	ErrCodeTreeDepth ErrorCode = "E6002"

	// Configuration errors (7xxx)
	ErrCodeConfigInvalid ErrorCode = "E7001"
	ErrCodeConfigParse   ErrorCode = "E7002"
)

// Exit codes for process termination
const (
	// ExitCodeFailure indicates a pipeline stage failed
	ExitCodeFailure = 1
	// ExitCodeConfigValidation indicates configuration validation failure
	ExitCodeConfigValidation = 2
)

// AppError represents an application-level error with code and context
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for the error
func (e *AppError) ExitCode() int {
	switch e.Code {
	case ErrCodeConfigInvalid, ErrCodeConfigParse:
		return ExitCodeConfigValidation
	default:
		return ExitCodeFailure
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// ErrInternal creates an internal error
func ErrInternal(message string, err error) *AppError {
	return Wrap(ErrCodeInternal, message, err)
}

// ErrConfig creates a configuration validation error
func ErrConfig(message string) *AppError {
	return New(ErrCodeConfigInvalid, message)
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError attempts to extract an AppError from the error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// ExitCode maps any error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.ExitCode()
	}
	return ExitCodeFailure
}
