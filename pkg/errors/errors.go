// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed errors with context for the survey shell.
// Bootstrap failures, registration timeouts and subscriber failures all carry
// a Code so callers and metrics can classify them without string matching.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies shell errors for logging, metrics and exit codes.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeLoadFailure indicates a step of the bootstrap chain failed.
	CodeLoadFailure ErrorCode = "LOAD_FAILURE"

	// CodeRegistrationTimeout indicates the expected element registration
	// was not observed after the chain finished loading.
	CodeRegistrationTimeout ErrorCode = "REGISTRATION_TIMEOUT"

	// CodeCallbackFailure indicates a readiness subscriber failed.
	CodeCallbackFailure ErrorCode = "CALLBACK_FAILURE"

	// CodeContractMismatch indicates the runtime chain and the canonical
	// resource list disagree.
	CodeContractMismatch ErrorCode = "CONTRACT_MISMATCH"

	// CodeStorage indicates a settings store error.
	CodeStorage ErrorCode = "STORAGE_ERROR"
)

// ShellError is a typed error with context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type ShellError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *ShellError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *ShellError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *ShellError) MarshalJSON() ([]byte, error) {
	out := struct {
		Message     string                 `json:"message"`
		Code        string                 `json:"code"`
		Err         string                 `json:"error,omitempty"`
		Context     map[string]interface{} `json:"context,omitempty"`
		Recoverable bool                   `json:"recoverable"`
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Context:     e.Context,
		Recoverable: e.Recoverable,
	}
	if e.Err != nil {
		out.Err = e.Err.Error()
	}
	return json.Marshal(out)
}

// New creates a new ShellError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *ShellError {
	return &ShellError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *ShellError) WithContext(key string, value interface{}) *ShellError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *ShellError) WithAttribute(key, value string) *ShellError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether a later attempt may succeed.
// Returns the error for method chaining.
func (e *ShellError) WithRecoverable(recoverable bool) *ShellError {
	e.Recoverable = recoverable
	return e
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *ShellError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// AsShellError converts an error to a ShellError.
// Errors that are not ShellErrors anywhere in the chain are wrapped as internal.
func AsShellError(err error) *ShellError {
	if err == nil {
		return nil
	}
	var se *ShellError
	if stderrors.As(err, &se) {
		return se
	}
	return New(CodeInternal, "wrapped error", err)
}

// HasCode reports whether any ShellError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *ShellError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Err
	}
	return false
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	se := AsShellError(err)
	switch se.Code {
	case CodeInvalidInput:
		return 2
	default:
		return 1
	}
}
