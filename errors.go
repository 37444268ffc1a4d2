package agenttool

import (
	"context"
	"errors"
	"fmt"
)

// Error codes carried in ToolResult.Error.Code.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeExecution    = "EXECUTION_ERROR"
	CodeToolNotFound = "TOOL_NOT_FOUND"
	CodeTimeout      = "TIMEOUT"
)

// Sentinel errors. Use errors.Is to check.
var (
	ErrValidation    = errors.New("validation failed")
	ErrToolNotFound  = errors.New("tool not found")
	ErrDuplicateTool = errors.New("tool already registered")
	ErrInvalidTool   = errors.New("invalid tool definition")
)

const unknownErrorMessage = "Unknown error occurred"

// CodedError is implemented by errors that carry a machine-readable code.
// Execute reports the code of the first CodedError in the chain.
type CodedError interface {
	error
	Code() string
}

// Error is a CodedError with an optional wrapped cause.
type Error struct {
	code    string
	message string
	Err     error
}

// NewError returns an Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{code: code, message: message}
}

// WrapError returns an Error with the given code wrapping err.
func WrapError(code string, err error) *Error {
	return &Error{code: code, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.message != "" && e.Err != nil:
		return e.message + ": " + e.Err.Error()
	case e.message != "":
		return e.message
	case e.Err != nil:
		return e.Err.Error()
	}
	return ""
}

func (e *Error) Code() string { return e.code }

func (e *Error) Unwrap() error { return e.Err }

// errorCode returns the code of the first CodedError in err's chain. Deadline
// errors without a code map to TIMEOUT; everything else to EXECUTION_ERROR.
func errorCode(err error) string {
	var coded CodedError
	if errors.As(err, &coded) && coded.Code() != "" {
		return coded.Code()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeExecution
}

// errorMessage returns err's message, or a generic one when it has none.
func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return unknownErrorMessage
	}
	return err.Error()
}

// DuplicateToolError reports a name collision in a Registry. It matches
// ErrDuplicateTool with errors.Is.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("Tool with name '%s' is already registered", e.Name)
}

func (e *DuplicateToolError) Is(target error) bool { return target == ErrDuplicateTool }

// panicError wraps a recovered panic value.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
