package agenttool

import (
	"context"
	"log/slog"
	"time"
)

// toolOptions hold optional tool settings.
type toolOptions struct {
	readOnly bool
	now      func() time.Time
}

// ToolOption configures a tool built with New.
type ToolOption func(*toolOptions)

// WithReadOnly marks the tool as free of side effects (see ToolMetadata).
func WithReadOnly() ToolOption {
	return func(o *toolOptions) {
		o.readOnly = true
	}
}

// WithClock overrides the clock used for result timestamps and timing.
func WithClock(now func() time.Time) ToolOption {
	return func(o *toolOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	timeout        time.Duration
	maxConcurrency int
	logger         *slog.Logger
	onBefore       func(context.Context, ToolCall)
	onAfter        func(context.Context, ToolCall, ToolResult)
}

// WithDefaultTimeout bounds each Registry.Execute call. Zero disables it.
func WithDefaultTimeout(d time.Duration) RegistryOption {
	return func(o *registryOptions) {
		o.timeout = d
	}
}

// WithMaxConcurrency limits parallel executions in ExecuteBatch.
// Pass 0 or negative for unlimited.
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithLogger sets the logger used for registry events.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// WithOnBeforeExecute sets a hook called before each Registry.Execute.
func WithOnBeforeExecute(fn func(context.Context, ToolCall)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called with the result of each Registry.Execute.
func WithOnAfterExecute(fn func(context.Context, ToolCall, ToolResult)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
