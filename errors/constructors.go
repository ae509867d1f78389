package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *AutoreadError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *AutoreadError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// InvalidInterval creates an invalid poll interval error. The stored
// interval must stay at its last valid value when this is returned.
func InvalidInterval(value interface{}) *AutoreadError {
	return New(ErrCodeInvalidInterval,
		fmt.Sprintf("poll interval must be a positive number of milliseconds, got %v", value)).
		WithDetail("interval", value)
}

// InvalidCursorBehavior creates an error for an unrecognized cursor behavior
func InvalidCursorBehavior(value string) *AutoreadError {
	return New(ErrCodeInvalidCursorBehavior,
		fmt.Sprintf("cursor behavior must be 'preserve', 'scroll_down' or 'none', got '%s'", value)).
		WithDetail("behavior", value)
}

// NotRegistered creates an error for an operation targeting an unmonitored buffer
func NotRegistered(buffer interface{}) *AutoreadError {
	return New(ErrCodeNotRegistered,
		fmt.Sprintf("buffer %v is not being monitored", buffer)).
		WithDetail("buffer", buffer)
}

// InvalidBuffer creates an error for a buffer handle that is no longer valid
func InvalidBuffer(buffer interface{}) *AutoreadError {
	return New(ErrCodeInvalidBuffer,
		fmt.Sprintf("buffer %v is no longer a valid handle", buffer)).
		WithDetail("buffer", buffer)
}

// RPCFailed wraps a failed call to the Neovim API
func RPCFailed(err error, method string) *AutoreadError {
	return Wrap(err, ErrCodeRPCFailed, fmt.Sprintf("nvim call failed: %s", method)).
		WithDetail("method", method)
}
