package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Monitoring errors
	ErrCodeInvalidInterval       ErrorCode = "INVALID_INTERVAL"
	ErrCodeInvalidCursorBehavior ErrorCode = "INVALID_CURSOR_BEHAVIOR"
	ErrCodeNotRegistered         ErrorCode = "NOT_REGISTERED"
	ErrCodeInvalidBuffer         ErrorCode = "INVALID_BUFFER"

	// Host errors
	ErrCodeRPCFailed    ErrorCode = "RPC_FAILED"
	ErrCodeNotConnected ErrorCode = "NOT_CONNECTED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// AutoreadError represents a structured error with context
type AutoreadError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *AutoreadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AutoreadError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *AutoreadError) WithDetail(key string, value interface{}) *AutoreadError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *AutoreadError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new AutoreadError
func New(code ErrorCode, message string) *AutoreadError {
	return &AutoreadError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AutoreadError
func Wrap(err error, code ErrorCode, message string) *AutoreadError {
	return &AutoreadError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific AutoreadError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	aerr, ok := err.(*AutoreadError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return aerr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	aerr, ok := err.(*AutoreadError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return aerr.Code
}
