// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("module not found")
	se := New(CodeLoadFailure, "step failed", cause)

	if se.Code != CodeLoadFailure {
		t.Errorf("expected CodeLoadFailure, got %v", se.Code)
	}
	if se.Message != "step failed" {
		t.Errorf("expected message 'step failed', got %q", se.Message)
	}
	if se.Err != cause {
		t.Errorf("expected cause to be preserved")
	}
	if !errors.Is(se, cause) {
		t.Errorf("expected errors.Is to work with wrapped error")
	}
}

func TestWithContextAndAttribute(t *testing.T) {
	se := New(CodeLoadFailure, "step failed", nil)
	se.WithContext("step", "assets/js/lit-base.js").
		WithAttribute("attempt", "1")

	if se.Context["step"] != "assets/js/lit-base.js" {
		t.Errorf("expected context step")
	}
	if se.Attributes["attempt"] != "1" {
		t.Errorf("expected attribute attempt")
	}
}

func TestWithRecoverable(t *testing.T) {
	se := New(CodeRegistrationTimeout, "not registered", nil)
	if se.Recoverable {
		t.Errorf("expected recoverable to be false by default")
	}
	se.WithRecoverable(true)
	if !se.Recoverable || se.RecoverableString() != "true" {
		t.Errorf("expected recoverable to be true after WithRecoverable")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		se       *ShellError
		expected string
	}{
		{
			name:     "with cause",
			se:       New(CodeTimeout, "operation timed out", errors.New("deadline exceeded")),
			expected: "[TIMEOUT] operation timed out: deadline exceeded",
		},
		{
			name:     "without cause",
			se:       New(CodeNotFound, "key not found", nil),
			expected: "[NOT_FOUND] key not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.se.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAsShellError(t *testing.T) {
	if AsShellError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	wrapped := fmt.Errorf("outer: %w", New(CodeCallbackFailure, "failed", nil))
	if got := AsShellError(wrapped).Code; got != CodeCallbackFailure {
		t.Fatalf("expected CodeCallbackFailure through wrapping, got %v", got)
	}
	if got := AsShellError(errors.New("plain")).Code; got != CodeInternal {
		t.Fatalf("expected CodeInternal, got %v", got)
	}
}

func TestHasCode(t *testing.T) {
	inner := New(CodeStorage, "write failed", nil)
	outer := New(CodeLoadFailure, "step failed", inner)

	if !HasCode(outer, CodeLoadFailure) {
		t.Errorf("expected outer code")
	}
	if !HasCode(outer, CodeStorage) {
		t.Errorf("expected inner code")
	}
	if HasCode(outer, CodeTimeout) {
		t.Errorf("unexpected timeout code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("plain errors carry no code")
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Errorf("expected 0 for nil")
	}
	if ExitCode(New(CodeInvalidInput, "bad flag", nil)) != 2 {
		t.Errorf("expected 2 for invalid input")
	}
	if ExitCode(errors.New("boom")) != 1 {
		t.Errorf("expected 1 for generic errors")
	}
}

func TestMarshalJSON(t *testing.T) {
	se := New(CodeLoadFailure, "step failed", errors.New("syntax error"))
	se.WithContext("step", "theme").WithRecoverable(true)

	data, err := json.Marshal(se)
	if err != nil {
		t.Fatalf("unexpected error marshaling: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unexpected error unmarshaling: %v", err)
	}

	if result["code"] != "LOAD_FAILURE" {
		t.Errorf("expected code 'LOAD_FAILURE', got %v", result["code"])
	}
	if result["error"] != "syntax error" {
		t.Errorf("expected error 'syntax error', got %v", result["error"])
	}
	if result["recoverable"] != true {
		t.Errorf("expected recoverable true")
	}
}
