package cli

import (
	"fmt"
	"os"

	"github.com/grovetools/autoread/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create an autoread.yml or rely on the defaults.\n")
		return err

	case errors.ErrCodeConfigValidation, errors.ErrCodeConfigInvalid:
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'autoread config validate' for details.\n")
		return err

	case errors.ErrCodeInvalidInterval:
		if arErr, ok := err.(*errors.AutoreadError); ok {
			fmt.Fprintf(os.Stderr, "❌ Invalid poll interval: %v. Use a positive number of milliseconds.\n",
				arErr.Details["interval"])
		}
		return err

	case errors.ErrCodeInvalidCursorBehavior:
		if arErr, ok := err.(*errors.AutoreadError); ok {
			fmt.Fprintf(os.Stderr, "❌ Unknown cursor behavior '%v'. Valid values: preserve, scroll_down, none.\n",
				arErr.Details["behavior"])
		}
		return err

	case errors.ErrCodeNotConnected:
		fmt.Fprintf(os.Stderr, "❌ Could not reach Neovim. Start autoread from inside nvim, or pass --addr.\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if arErr, ok := err.(*errors.AutoreadError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", arErr.ToJSON())
			}
		}
		return err
	}
}
