package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a prompteval error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNoPrompts      ErrorCode = "NO_PROMPTS"      // 400
	ErrNotReady       ErrorCode = "NOT_READY"       // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInvalidConfig  ErrorCode = "INVALID_CONFIG"  // 422
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrLLMFailed      ErrorCode = "LLM_FAILED"      // 502
	ErrLLMUnavailable ErrorCode = "LLM_UNAVAILABLE" // 503
)

// EvalError represents a structured error with code, status, and details.
type EvalError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *EvalError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *EvalError {
	return &EvalError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNoPrompts creates a 400 error for documents that yield no prompts.
func NewNoPrompts(filename string) *EvalError {
	return &EvalError{
		Code:    ErrNoPrompts,
		Status:  400,
		Message: "no prompts found; use YAML frontmatter (---) or '## System Prompt' / '## User Prompt' headings",
		Details: map[string]any{"filename": filename},
	}
}

// NewNotReady creates a 400 error for results that are not available yet.
func NewNotReady(status string) *EvalError {
	return &EvalError{
		Code:    ErrNotReady,
		Status:  400,
		Message: fmt.Sprintf("analysis not complete (status: %s)", status),
		Details: map[string]any{"status": status},
	}
}

// NewNotFound creates a 404 error. kind names what was looked up ("prompt", "job", ...).
func NewNotFound(kind, identifier string) *EvalError {
	return &EvalError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInvalidConfig creates a 422 error for rule files that are missing or malformed.
func NewInvalidConfig(path string, err error) *EvalError {
	msg := fmt.Sprintf("invalid config %s", path)
	if err != nil {
		msg = fmt.Sprintf("invalid config %s: %v", path, err)
	}
	return &EvalError{
		Code:    ErrInvalidConfig,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
		cause:   err,
	}
}

// NewLLMUnavailable creates a 503 error when no LLM client is configured.
func NewLLMUnavailable(msg string) *EvalError {
	return &EvalError{
		Code:    ErrLLMUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewLLMFailed creates a 502 error when the LLM call or its reply is unusable.
func NewLLMFailed(err error) *EvalError {
	msg := "llm request failed"
	if err != nil {
		msg = fmt.Sprintf("llm request failed: %v", err)
	}
	return &EvalError{
		Code:    ErrLLMFailed,
		Status:  502,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *EvalError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &EvalError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) an EvalError with the given code.
func Is(err error, code ErrorCode) bool {
	var eErr *EvalError
	if stderrors.As(err, &eErr) {
		return eErr.Code == code
	}
	return false
}

// As returns err as an *EvalError, converting unknown errors to INTERNAL.
func As(err error) *EvalError {
	var eErr *EvalError
	if stderrors.As(err, &eErr) {
		return eErr
	}
	return NewInternal(err)
}
