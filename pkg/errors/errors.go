// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for
// Castellan. Every kernel error carries a code and a retry class.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Castellan errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeMalformedOutput indicates a stage produced output that could
	// not be parsed into its declared shape.
	CodeMalformedOutput ErrorCode = "MALFORMED_OUTPUT"

	// CodeScopeViolation indicates an agent acted outside its resolved scope.
	CodeScopeViolation ErrorCode = "SCOPE_VIOLATION"

	// CodeSpecViolation indicates output that contradicts the intent spec.
	CodeSpecViolation ErrorCode = "SPEC_VIOLATION"
)

// Class partitions errors by retry policy. Structural faults are mechanical
// and eligible for bounded retry; semantic faults are content-correctness
// failures that escalate immediately.
type Class string

const (
	ClassStructural Class = "structural"
	ClassSemantic   Class = "semantic"
)

// Classify maps an error code to its retry class. Malformed output and
// schema mismatches are structural: the source must simply be re-asked. A
// semantic fault requires a validly shaped answer that is nonetheless wrong.
func Classify(code ErrorCode) Class {
	switch code {
	case CodeScopeViolation, CodeSpecViolation:
		return ClassSemantic
	default:
		return ClassStructural
	}
}

// Error is a typed error with structured context. It implements the error
// interface and can be unwrapped with errors.As.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Class returns the retry class of the error.
func (e *Error) Class() Class {
	return Classify(e.Code)
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *Error) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"code":    string(e.Code),
		"class":   string(e.Class()),
		"message": e.Message,
	}
	if e.Err != nil {
		out["cause"] = e.Err.Error()
	}
	if len(e.Context) > 0 {
		out["context"] = e.Context
	}
	return json.Marshal(out)
}

// New creates a new Error with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]any),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// AsError converts err to an *Error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*Error); ok {
		return ce
	}
	return New(CodeInternal, "wrapped error", err)
}

// IsStructural reports whether err is eligible for bounded retry. Unknown
// errors are treated as structural internal faults.
func IsStructural(err error) bool {
	if err == nil {
		return false
	}
	return AsError(err).Class() == ClassStructural
}

// IsSemantic reports whether err must escalate without retry.
func IsSemantic(err error) bool {
	if err == nil {
		return false
	}
	return AsError(err).Class() == ClassSemantic
}
