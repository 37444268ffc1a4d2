// Package toolotel traces tool executions with OpenTelemetry.
package toolotel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

const instrumentationName = "github.com/marceldarvas/n8n-nodes-directus-sub000/ext/toolotel"

// Span attribute keys.
const (
	AttrToolName     = attribute.Key("tool.name")
	AttrToolCategory = attribute.Key("tool.category")
	AttrSuccess      = attribute.Key("tool.success")
	AttrErrorCode    = attribute.Key("tool.error_code")
	AttrDurationMs   = attribute.Key("tool.execution_time_ms")
)

// WithTracing returns a middleware that records one span per execution.
// A nil tracer uses the global tracer provider.
func WithTracing(tracer trace.Tracer) agenttool.Middleware {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return func(next agenttool.Tool) agenttool.Tool {
		return &tracedTool{Base: agenttool.Base{Next: next}, tracer: tracer}
	}
}

type tracedTool struct {
	agenttool.Base
	tracer trace.Tracer
}

func (t *tracedTool) Execute(ctx context.Context, params map[string]any) agenttool.ToolResult {
	ctx, span := t.tracer.Start(ctx, "tool "+t.Name(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrToolName.String(t.Name()),
			AttrToolCategory.String(t.Category()),
		))
	defer span.End()

	res := t.Next.Execute(ctx, params)
	span.SetAttributes(
		AttrSuccess.Bool(res.Success),
		AttrDurationMs.Int64(res.Metadata.ExecutionTimeMs),
	)
	if !res.Success && res.Error != nil {
		span.SetAttributes(AttrErrorCode.String(res.Error.Code))
		span.SetStatus(codes.Error, res.Error.Message)
		if err, ok := res.Error.Details.(error); ok {
			span.RecordError(err)
		}
		return res
	}
	span.SetStatus(codes.Ok, "")
	return res
}
