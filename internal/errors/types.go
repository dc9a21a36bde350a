package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrorTypeConfig covers bad URLs, missing region and rejected bodies.
	// Always raised before any invocation is attempted.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeValidation covers malformed CLI input.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTransport covers failed or timed out invocation calls.
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeUpstream covers a Lambda API call that completed with a
	// non-success status of its own.
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeDecoding covers malformed envelopes, base64 and JSON bodies.
	ErrorTypeDecoding ErrorType = "decoding"
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeMCP      ErrorType = "mcp"
	ErrorTypeInternal ErrorType = "internal"
)

// LurlError represents a structured error with context
type LurlError struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *LurlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping
func (e *LurlError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a specific type
func (e *LurlError) Is(target error) bool {
	if targetErr, ok := target.(*LurlError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *LurlError) WithContext(key string, value interface{}) *LurlError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new LurlError
func New(errType ErrorType, message string) *LurlError {
	return &LurlError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *LurlError {
	return &LurlError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *LurlError {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// Newf creates a new LurlError with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *LurlError {
	return New(errType, fmt.Sprintf(format, args...))
}

// As returns the outermost LurlError in err's chain.
func As(err error) (*LurlError, bool) {
	var lErr *LurlError
	if stderrors.As(err, &lErr) {
		return lErr, true
	}
	return nil, false
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if lErr, ok := As(err); ok {
		return lErr.Type == errType
	}
	return false
}

// GetType returns the error type, or ErrorTypeInternal if not a LurlError
func GetType(err error) ErrorType {
	if lErr, ok := As(err); ok {
		return lErr.Type
	}
	return ErrorTypeInternal
}

// GetContext returns context information from the error
func GetContext(err error) map[string]interface{} {
	if lErr, ok := As(err); ok {
		return lErr.Context
	}
	return nil
}
