package errors

import (
	"errors"
	"fmt"
	"testing"
)

// TestNew tests creating a new AppError
func TestNew(t *testing.T) {
	err := New(ErrCodeRender, "render failed")

	if err == nil {
		t.Fatal("New() returned nil")
	}

	if err.Code != ErrCodeRender {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeRender)
	}

	if err.Message != "render failed" {
		t.Errorf("Message = %s, want 'render failed'", err.Message)
	}

	if err.Err != nil {
		t.Error("Err should be nil for New()")
	}
}

// TestWrap tests wrapping an existing error
func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	err := Wrap(ErrCodeInternal, "wrapped error", originalErr)

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInternal)
	}

	if err.Err != originalErr {
		t.Error("Err should be the original error")
	}
}

// TestAppError_Error tests the Error method
func TestAppError_Error(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := New(ErrCodeConfigInvalid, "mapping url is required")
		if got := err.Error(); got != "[E7001] mapping url is required" {
			t.Errorf("Error() = %s, want '[E7001] mapping url is required'", got)
		}
	})

	t.Run("with underlying error", func(t *testing.T) {
		err := Wrap(ErrCodeInputRead, "failed to read input", errors.New("file not found"))
		if got := err.Error(); got != "[E2001] failed to read input: file not found" {
			t.Errorf("Error() = %s, want '[E2001] failed to read input: file not found'", got)
		}
	})
}

// TestAppError_Unwrap tests the Unwrap method
func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original")
	err := Wrap(ErrCodeInternal, "message", originalErr)

	if errors.Unwrap(err) != originalErr {
		t.Error("errors.Unwrap() should return the original error")
	}

	if New(ErrCodeInternal, "message").Unwrap() != nil {
		t.Error("Unwrap() should return nil when no underlying error")
	}
}

// TestAppError_ExitCode tests the exit code mapping
func TestAppError_ExitCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeConfigInvalid, ExitCodeConfigValidation},
		{ErrCodeConfigParse, ExitCodeConfigValidation},
		{ErrCodeInputRead, ExitCodeFailure},
		{ErrCodeMappingStatus, ExitCodeFailure},
		{ErrCodeTreeCycle, ExitCodeFailure},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("ExitCode(nil) should be 0")
	}
	if ExitCode(errors.New("plain")) != ExitCodeFailure {
		t.Error("plain errors should map to ExitCodeFailure")
	}
	wrapped := fmt.Errorf("outer: %w", ErrConfig("bad"))
	if ExitCode(wrapped) != ExitCodeConfigValidation {
		t.Error("wrapped config errors should map to ExitCodeConfigValidation")
	}
}

// TestAppError_WithDetails tests the WithDetails method
func TestAppError_WithDetails(t *testing.T) {
	err := New(ErrCodeMappingStatus, "unexpected status")
	result := err.WithDetails(map[string]int{"status": 404})

	if result != err {
		t.Error("WithDetails() should return the same error")
	}

	details, ok := err.Details.(map[string]int)
	if !ok {
		t.Fatal("Details should be map[string]int")
	}
	if details["status"] != 404 {
		t.Errorf("Details[status] = %d, want 404", details["status"])
	}
}

// TestAsAppError tests the AsAppError function
func TestAsAppError(t *testing.T) {
	t.Run("AppError", func(t *testing.T) {
		original := New(ErrCodeRender, "test")
		appErr, ok := AsAppError(original)
		if !ok || appErr != original {
			t.Error("AsAppError() should return the same error")
		}
	})

	t.Run("wrapped AppError", func(t *testing.T) {
		original := New(ErrCodeRender, "test")
		appErr, ok := AsAppError(fmt.Errorf("context: %w", original))
		if !ok || appErr != original {
			t.Error("AsAppError() should find the AppError in the chain")
		}
	})

	t.Run("regular error", func(t *testing.T) {
		if _, ok := AsAppError(errors.New("regular error")); ok {
			t.Error("AsAppError() should return false for regular error")
		}
	})

	t.Run("nil error", func(t *testing.T) {
		if IsAppError(nil) {
			t.Error("IsAppError() should return false for nil")
		}
	})
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("stage: %w", New(ErrCodeTreeDepth, "too deep"))
	if !HasCode(err, ErrCodeTreeDepth) {
		t.Error("HasCode() should match the wrapped code")
	}
	if HasCode(err, ErrCodeTreeCycle) {
		t.Error("HasCode() should not match a different code")
	}
}

// TestErrorCodes tests that all error codes are unique
func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeInternal,
		ErrCodeInputRead,
		ErrCodeInputParse,
		ErrCodeMappingFetch,
		ErrCodeMappingStatus,
		ErrCodeMappingParse,
		ErrCodeRender,
		ErrCodeOutputWrite,
		ErrCodePDFExport,
		ErrCodeTreeCycle,
		ErrCodeTreeDepth,
		ErrCodeConfigInvalid,
		ErrCodeConfigParse,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
