package agenttool

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a Tool with cross-cutting behavior (logging, timeout, caching).
type Middleware func(Tool) Tool

// WithLogging returns a middleware that logs start, end, duration, and error codes.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Tool) Tool {
		return &loggingTool{Base: Base{Next: next}, logger: logger}
	}
}

// WithTimeoutMiddleware returns a middleware that bounds each execution with a
// context deadline. Named with the "Middleware" suffix to avoid colliding with
// the registry option WithDefaultTimeout; when both apply the shorter wins.
func WithTimeoutMiddleware(d time.Duration) Middleware {
	return func(next Tool) Tool {
		return &timeoutTool{Base: Base{Next: next}, timeout: d}
	}
}

// Base delegates every Tool and ToolMetadata method to Next. Middleware types
// embed it and override Execute.
type Base struct{ Next Tool }

func (b *Base) Name() string             { return b.Next.Name() }
func (b *Base) Description() string      { return b.Next.Description() }
func (b *Base) Category() string         { return b.Next.Category() }
func (b *Base) Config() ToolConfig       { return b.Next.Config() }
func (b *Base) OpenAIFunction() Function { return b.Next.OpenAIFunction() }

func (b *Base) Execute(ctx context.Context, params map[string]any) ToolResult {
	return b.Next.Execute(ctx, params)
}

func (b *Base) ReadOnly() bool {
	if tm, ok := b.Next.(ToolMetadata); ok {
		return tm.ReadOnly()
	}
	return false
}

type loggingTool struct {
	Base
	logger *slog.Logger
}

func (m *loggingTool) Execute(ctx context.Context, params map[string]any) ToolResult {
	m.logger.InfoContext(ctx, "tool start", "tool", m.Next.Name())
	start := time.Now()
	res := m.Next.Execute(ctx, params)
	dur := time.Since(start)
	if !res.Success {
		code, msg := "", ""
		if res.Error != nil {
			code, msg = res.Error.Code, res.Error.Message
		}
		m.logger.ErrorContext(ctx, "tool error", "tool", m.Next.Name(), "duration", dur, "code", code, "error", msg)
		return res
	}
	m.logger.InfoContext(ctx, "tool end", "tool", m.Next.Name(), "duration", dur)
	return res
}

type timeoutTool struct {
	Base
	timeout time.Duration
}

func (t *timeoutTool) Execute(ctx context.Context, params map[string]any) ToolResult {
	if t.timeout <= 0 {
		return t.Next.Execute(ctx, params)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Next.Execute(ctx, params)
}

// Use stores the given middlewares and reapplies them from scratch to all
// registered tools (onion order: first middleware is outermost). Tools
// registered later get them too. Calling Use again replaces the chain.
func (r *Registry) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = middlewares
	for name, raw := range r.rawTools {
		r.tools[name] = wrap(raw, middlewares)
	}
}

var (
	_ Tool         = (*Base)(nil)
	_ ToolMetadata = (*Base)(nil)
)
