package errors

import (
	"fmt"
	"testing"
)

func TestAutoreadError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeNotRegistered, "buffer not monitored")
	if err.Code != ErrCodeNotRegistered {
		t.Errorf("expected code %s, got %s", ErrCodeNotRegistered, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeRPCFailed, "nvim call failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeRPCFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeNotRegistered) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("buffer", 3).WithDetail("name", "main.go")
	if detailed.Details["buffer"] != 3 {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test InvalidInterval
	err := InvalidInterval(-1)
	if err.Code != ErrCodeInvalidInterval {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidInterval, err.Code)
	}
	if err.Details["interval"] != -1 {
		t.Error("InvalidInterval should include interval detail")
	}

	// Test InvalidCursorBehavior
	err = InvalidCursorBehavior("jump")
	if err.Code != ErrCodeInvalidCursorBehavior {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidCursorBehavior, err.Code)
	}
	if err.Details["behavior"] != "jump" {
		t.Error("InvalidCursorBehavior should include behavior detail")
	}

	// Test NotRegistered
	err = NotRegistered(7)
	if err.Code != ErrCodeNotRegistered {
		t.Errorf("expected code %s, got %s", ErrCodeNotRegistered, err.Code)
	}
	if err.Details["buffer"] != 7 {
		t.Error("NotRegistered should include buffer detail")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != "" {
		t.Error("GetCode(nil) should return empty code")
	}

	err := InvalidBuffer(12)
	if GetCode(err) != ErrCodeInvalidBuffer {
		t.Errorf("expected %s, got %s", ErrCodeInvalidBuffer, GetCode(err))
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if GetCode(wrapped) != ErrCodeInvalidBuffer {
		t.Error("GetCode should unwrap to find the code")
	}
}
