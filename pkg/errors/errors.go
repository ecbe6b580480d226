package errors

import (
	goerrors "errors"
	"fmt"
)

// ErrorType classifies failures by the subsystem that produced them
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeSession       ErrorType = "session"
	ErrorTypeDiscovery     ErrorType = "discovery"
	ErrorTypeExtraction    ErrorType = "extraction"
	ErrorTypePersistence   ErrorType = "persistence"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error carries an error type alongside the message and, optionally, a cause
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error without a cause
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates a typed error wrapping an underlying cause
func Wrap(errorType ErrorType, message string, cause error) *Error {
	return &Error{Type: errorType, Message: message, Cause: cause}
}

// TypeOf returns the error type of err, or ErrorTypeUnknown if err carries none
func TypeOf(err error) ErrorType {
	var typed *Error
	if goerrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsFatal reports whether an error must abort the run. Only configuration
// and session errors are fatal; everything else is absorbed at the loop level.
func IsFatal(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeConfiguration, ErrorTypeSession:
		return true
	default:
		return false
	}
}

// IsRecoverable reports whether an error may be absorbed without ending the run
func IsRecoverable(err error) bool {
	return err != nil && !IsFatal(err)
}
