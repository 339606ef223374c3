// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Argonaut.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Argonaut errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeConfig indicates missing or invalid configuration.
	CodeConfig ErrorCode = "CONFIG_ERROR"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeAPIFailure indicates an upstream ArgoCD API call failed.
	CodeAPIFailure ErrorCode = "API_FAILURE"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeRateLimit indicates rate limiting was triggered.
	CodeRateLimit ErrorCode = "RATE_LIMITED"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates authorization failed.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeLLMError indicates an LLM provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"
)

// ArgonautError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type ArgonautError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
	StatusCode  int // For HTTP responses
}

// Error implements the error interface.
func (e *ArgonautError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *ArgonautError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *ArgonautError) MarshalJSON() ([]byte, error) {
	type Alias ArgonautError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new ArgonautError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *ArgonautError {
	return &ArgonautError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *ArgonautError) WithContext(key string, value interface{}) *ArgonautError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *ArgonautError) WithAttribute(key, value string) *ArgonautError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *ArgonautError) WithRecoverable(recoverable bool) *ArgonautError {
	e.Recoverable = recoverable
	return e
}

// AsArgonautError attempts to convert an error to an ArgonautError.
// Returns the error as ArgonautError if it is one, or wraps it otherwise.
func AsArgonautError(err error) *ArgonautError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*ArgonautError); ok {
		return ae
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *ArgonautError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeUnauthorized:
		return 401
	case CodeInvalidInput:
		return 400
	case CodeConfig:
		return 422
	case CodeTimeout:
		return 408
	case CodeRateLimit:
		return 429
	case CodeAPIFailure:
		return 502
	default:
		return 500
	}
}
