// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/jllopis/surveyshell/pkg/errors"
)

// CLIError wraps ShellError with a hint for the operator.
type CLIError struct {
	*errors.ShellError
	Hint string
}

// NewCLIError creates a new CLI error.
func NewCLIError(se *errors.ShellError, hint string) *CLIError {
	return &CLIError{
		ShellError: se,
		Hint:       hint,
	}
}

// Error returns the formatted error message with hints.
func (e *CLIError) Error() string {
	if e.ShellError == nil {
		return "unknown error"
	}

	msg := e.ShellError.Error()
	if e.Hint != "" {
		msg += "\n  Hint: " + e.Hint
	}
	return msg
}

// Unwrap exposes the ShellError so errors.As and HasCode see through it.
func (e *CLIError) Unwrap() error {
	if e.ShellError == nil {
		return nil
	}
	return e.ShellError
}

// PrintError writes the error to w, as a JSON object when asJSON is set.
func (e *CLIError) PrintError(w io.Writer, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]any{
				"code":        e.Code,
				"message":     e.Message,
				"cause":       causeString(e.Err),
				"hint":        e.Hint,
				"recoverable": e.Recoverable,
			},
		})
		fmt.Fprintln(w, string(payload))
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", FormatErrorCode(e.Code), e.Message)
	if e.Err != nil {
		fmt.Fprintf(w, "  Cause: %v\n", e.Err)
	}
	if e.Hint != "" {
		fmt.Fprintf(w, "  Hint: %s\n", e.Hint)
	}
}

func causeString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewNotFoundError creates a not found error with CLI hints.
func NewNotFoundError(resource, name string) *CLIError {
	se := errors.New(errors.CodeNotFound, fmt.Sprintf("%s '%s' not found", resource, name), nil).
		WithContext("resource", resource).
		WithContext("name", name).
		WithRecoverable(false)
	return NewCLIError(se, fmt.Sprintf("run 'surveyshell %s list' to see what is stored", resource))
}

// NewInvalidArgumentError creates an invalid argument error with CLI hints.
func NewInvalidArgumentError(arg, reason string) *CLIError {
	se := errors.New(errors.CodeInvalidInput, fmt.Sprintf("invalid argument: %s", reason), nil).
		WithContext("argument", arg).
		WithContext("reason", reason).
		WithRecoverable(false)
	return NewCLIError(se, "run 'surveyshell help' for usage information")
}

// NewConfigError creates a configuration error with CLI hints.
func NewConfigError(err error, configPath string) *CLIError {
	se := errors.New(errors.CodeInvalidInput, "configuration error", err).
		WithContext("config_path", configPath).
		WithRecoverable(false)

	hint := "check your configuration file syntax and --set overrides"
	if configPath != "" {
		hint = fmt.Sprintf("check %s for syntax errors", configPath)
	}
	return NewCLIError(se, hint)
}

// WrapStoreError wraps a settings store failure with CLI hints.
func WrapStoreError(err error, store, dsn string) *CLIError {
	se := errors.New(errors.CodeStorage, "settings store unavailable", err).
		WithContext("store", store).
		WithContext("dsn", dsn).
		WithRecoverable(true)
	return NewCLIError(se, "check settings.dsn points to a writable sqlite database")
}

// hintFor suggests a next step for errors raised by the libraries.
func hintFor(code errors.ErrorCode) string {
	switch code {
	case errors.CodeRegistrationTimeout:
		return "the header element was not registered in time; raise bootstrap.settle_timeout or check bootstrap.element"
	case errors.CodeLoadFailure:
		return "a bootstrap step failed; run again, loaded steps are not repeated"
	case errors.CodeContractMismatch:
		return "the bootstrap chain no longer matches the shared include list"
	case errors.CodeStorage:
		return "check settings.store and settings.dsn"
	case errors.CodeNotFound:
		return "check the path exists"
	case errors.CodeTimeout:
		return "this may be a transient error; try again"
	default:
		return ""
	}
}

// reportError prints err and returns the process exit status for it.
func reportError(w io.Writer, err error, asJSON bool) int {
	var cliErr *CLIError
	if !stderrors.As(err, &cliErr) {
		if !isShellError(err) {
			PrintSimpleError(w, err, asJSON)
			return 1
		}
		se := errors.AsShellError(err)
		cliErr = NewCLIError(se, hintFor(se.Code))
	}
	cliErr.PrintError(w, asJSON)
	return errors.ExitCode(cliErr.ShellError)
}

func isShellError(err error) bool {
	var se *errors.ShellError
	return stderrors.As(err, &se)
}

// PrintSimpleError prints a simple error message (for non-ShellError cases).
func PrintSimpleError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]string{"code": "UNKNOWN", "message": err.Error()},
		})
		fmt.Fprintln(w, string(payload))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// FormatErrorCode returns a user-friendly name for error codes.
func FormatErrorCode(code errors.ErrorCode) string {
	switch code {
	case errors.CodeInternal:
		return "Internal Error"
	case errors.CodeInvalidInput:
		return "Invalid Input"
	case errors.CodeNotFound:
		return "Not Found"
	case errors.CodeTimeout:
		return "Timeout"
	case errors.CodeLoadFailure:
		return "Load Failure"
	case errors.CodeRegistrationTimeout:
		return "Registration Timeout"
	case errors.CodeCallbackFailure:
		return "Callback Failure"
	case errors.CodeContractMismatch:
		return "Contract Mismatch"
	case errors.CodeStorage:
		return "Storage Error"
	default:
		return string(code)
	}
}
