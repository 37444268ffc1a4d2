package agenttool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	inner := errors.New("connection refused")
	tests := []struct {
		name   string
		err    *Error
		expect string
	}{
		{"message only", NewError("FORBIDDEN", "no access"), "no access"},
		{"wrapped only", WrapError("UPSTREAM", inner), "connection refused"},
		{"both", &Error{code: "UPSTREAM", message: "directus", Err: inner}, "directus: connection refused"},
		{"empty", &Error{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.err.Error())
		})
	}
	assert.ErrorIs(t, WrapError("X", inner), inner)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeExecution, errorCode(errors.New("plain")))
	assert.Equal(t, "FORBIDDEN", errorCode(fmt.Errorf("wrapped: %w", NewError("FORBIDDEN", "x"))))
	assert.Equal(t, CodeExecution, errorCode(NewError("", "no code")))
	assert.Equal(t, CodeTimeout, errorCode(fmt.Errorf("poll: %w", context.DeadlineExceeded)))
	assert.Equal(t, "FLOW_TIMEOUT", errorCode(WrapError("FLOW_TIMEOUT", context.DeadlineExceeded)))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Unknown error occurred", errorMessage(nil))
	assert.Equal(t, "x", errorMessage(errors.New("x")))
}

func TestDuplicateToolError(t *testing.T) {
	err := &DuplicateToolError{Name: "items"}
	assert.Equal(t, "Tool with name 'items' is already registered", err.Error())
	assert.ErrorIs(t, err, ErrDuplicateTool)
	assert.NotErrorIs(t, err, ErrToolNotFound)
}
