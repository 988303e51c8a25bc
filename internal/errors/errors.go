package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UnparsableExpression indicates unbalanced parentheses or quotes in an argument list
	UnparsableExpression ErrorCode = "UNPARSABLE_EXPRESSION"
	// PlaceholderMismatch indicates placeholder/argument count or auxiliary ambiguity
	PlaceholderMismatch ErrorCode = "PLACEHOLDER_MISMATCH"
	// IOFailure indicates a file was unreadable, undecodable, or unwritable
	IOFailure ErrorCode = "IO_FAILURE"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// RulesInvalid indicates a substitution rules file could not be loaded
	RulesInvalid ErrorCode = "RULES_INVALID"
	// HistoryUnavailable indicates the run history database could not be opened
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixError represents a logfix error with code, message, and optional details
type FixError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new FixError
func New(code ErrorCode, message string, cause error) *FixError {
	return &FixError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *FixError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *FixError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *FixError) WithDetails(details interface{}) *FixError {
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from an error, returning InternalError
// for errors that are not FixErrors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if fe, ok := err.(*FixError); ok {
		return fe.Code
	}
	return InternalError
}
