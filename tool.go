package agenttool

import (
	"context"
	"encoding/json"
)

// Tool is the contract for an LLM-callable instrument. Execute never panics or
// returns a Go error: every outcome, including invalid input, is reported in
// the ToolResult envelope.
type Tool interface {
	Name() string
	Description() string
	// Category is an optional grouping label; "" means uncategorized.
	Category() string
	// Config returns the tool's identity. The returned value is a copy.
	Config() ToolConfig
	// OpenAIFunction returns the function-calling description of the tool.
	OpenAIFunction() Function
	Execute(ctx context.Context, params map[string]any) ToolResult
}

// ToolMetadata is implemented by tools created with New and exposes optional
// per-tool settings used by middleware and the registry.
type ToolMetadata interface {
	// ReadOnly reports that the tool has no side effects; results may be cached.
	ReadOnly() bool
}

// RunFunc is the tool-specific behavior invoked by Execute after the parameters
// have been sanitized and validated. A returned error (or a panic) becomes a
// failed ToolResult.
type RunFunc func(ctx context.Context, params map[string]any) (any, error)

// Example documents one sample invocation of a tool.
type Example struct {
	Description string         `json:"description"`
	Arguments   map[string]any `json:"arguments"`
}

// ToolConfig is a tool's identity, fixed at construction.
type ToolConfig struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"-"`
	Category    string     `json:"category,omitempty"`
	Examples    []Example  `json:"examples,omitempty"`
}

func (c ToolConfig) clone() ToolConfig {
	c.Parameters = c.Parameters.Clone()
	if c.Examples != nil {
		examples := make([]Example, len(c.Examples))
		for i, ex := range c.Examples {
			args, _ := CloneValue(ex.Arguments).(map[string]any)
			examples[i] = Example{Description: ex.Description, Arguments: args}
		}
		c.Examples = examples
	}
	return c
}

// ToolCall is a single execution request as produced by the LLM.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Function is the OpenAI function-calling description of a tool.
type Function struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  FunctionParameters `json:"parameters"`
}

// FunctionParameters is the JSON Schema object describing a function's
// arguments. Required is omitted when no parameter is required.
type FunctionParameters struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// document returns p as a generic JSON Schema map.
func (p FunctionParameters) document() map[string]any {
	doc := map[string]any{"type": p.Type, "properties": p.Properties}
	if len(p.Required) > 0 {
		doc["required"] = p.Required
	}
	return doc
}

// openAIFunction builds the function description for cfg. Per-parameter
// required flags are hoisted into the top-level required list.
func openAIFunction(cfg ToolConfig) Function {
	return Function{
		Name:        cfg.Name,
		Description: cfg.Description,
		Parameters: FunctionParameters{
			Type:       string(TypeObject),
			Properties: cfg.Parameters.jsonProperties(),
			Required:   cfg.Parameters.RequiredNames(),
		},
	}
}
