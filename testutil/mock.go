// Package testutil provides test helpers for agenttool (e.g. MockTool).
package testutil

import (
	"context"
	"sync/atomic"
	"time"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

// MockTool is a configurable Tool implementation for tests. It bypasses
// parameter sanitizing and validation; use agenttool.New when those matter.
type MockTool struct {
	NameVal     string
	DescVal     string
	CategoryVal string
	ParamsVal   agenttool.Parameters
	ReadOnlyVal bool
	RunFn       agenttool.RunFunc

	calls atomic.Int64
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// Category returns the tool category.
func (m *MockTool) Category() string {
	return m.CategoryVal
}

// Config returns the tool identity.
func (m *MockTool) Config() agenttool.ToolConfig {
	return agenttool.ToolConfig{
		Name:        m.Name(),
		Description: m.DescVal,
		Category:    m.CategoryVal,
		Parameters:  m.ParamsVal,
	}
}

// OpenAIFunction returns a function description built from ParamsVal.
func (m *MockTool) OpenAIFunction() agenttool.Function {
	return agenttool.Function{
		Name:        m.Name(),
		Description: m.DescVal,
		Parameters: agenttool.FunctionParameters{
			Type:       "object",
			Properties: propertiesOf(m.ParamsVal),
			Required:   m.ParamsVal.RequiredNames(),
		},
	}
}

func propertiesOf(params agenttool.Parameters) map[string]any {
	out := make(map[string]any, len(params))
	for _, p := range params {
		out[p.Name] = p.Schema.JSONSchema()
	}
	return out
}

// ReadOnly returns ReadOnlyVal.
func (m *MockTool) ReadOnly() bool {
	return m.ReadOnlyVal
}

// Calls returns how many times Execute was called.
func (m *MockTool) Calls() int {
	return int(m.calls.Load())
}

// Execute runs RunFn if set, otherwise succeeds with nil data.
func (m *MockTool) Execute(ctx context.Context, params map[string]any) agenttool.ToolResult {
	m.calls.Add(1)
	start := time.Now()
	res := agenttool.ToolResult{Success: true}
	if m.RunFn != nil {
		data, err := m.RunFn(ctx, params)
		if err != nil {
			code := agenttool.CodeExecution
			if coded, ok := err.(agenttool.CodedError); ok {
				code = coded.Code()
			}
			res = agenttool.ToolResult{Error: &agenttool.ToolError{Message: err.Error(), Code: code, Details: err}}
		} else {
			res.Data = data
		}
	}
	res.Metadata = agenttool.Metadata{
		Timestamp:       start,
		OperationName:   m.Name(),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
	return res
}

// Ensure MockTool implements Tool.
var (
	_ agenttool.Tool         = (*MockTool)(nil)
	_ agenttool.ToolMetadata = (*MockTool)(nil)
)
