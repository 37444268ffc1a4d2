package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMockTool(t *testing.T) {
	m := &MockTool{
		NameVal:     "test_tool",
		DescVal:     "For tests",
		CategoryVal: "items",
		ParamsVal: agenttool.Parameters{
			agenttool.Param("q", agenttool.String("query").AsRequired()),
		},
		RunFn: func(_ context.Context, params map[string]any) (any, error) {
			return map[string]any{"echo": params["q"]}, nil
		},
	}
	assert.Equal(t, "test_tool", m.Name())
	assert.Equal(t, "For tests", m.Description())
	assert.Equal(t, "items", m.Category())
	fn := m.OpenAIFunction()
	assert.Equal(t, []string{"q"}, fn.Parameters.Required)
	assert.Contains(t, fn.Parameters.Properties, "q")

	res := m.Execute(context.Background(), map[string]any{"q": "x"})
	require.True(t, res.Success)
	assert.Equal(t, map[string]any{"echo": "x"}, res.Data)
	assert.Equal(t, "test_tool", res.Metadata.OperationName)
	assert.Equal(t, 1, m.Calls())
}

func TestMockTool_Error(t *testing.T) {
	m := &MockTool{RunFn: func(context.Context, map[string]any) (any, error) {
		return nil, agenttool.NewError("FORBIDDEN", "nope")
	}}
	res := m.Execute(context.Background(), nil)
	require.False(t, res.Success)
	assert.Equal(t, "FORBIDDEN", res.Error.Code)
	assert.Equal(t, "mock", res.Metadata.OperationName)

	m.RunFn = func(context.Context, map[string]any) (any, error) { return nil, errors.New("x") }
	res = m.Execute(context.Background(), nil)
	assert.Equal(t, agenttool.CodeExecution, res.Error.Code)
}

func TestNewTestRegistry(t *testing.T) {
	m := &MockTool{NameVal: "m", RunFn: func(context.Context, map[string]any) (any, error) {
		return "ok", nil
	}}
	reg := NewTestRegistry(m)
	require.NotNil(t, reg)
	all := reg.GetAllTools()
	require.Len(t, all, 1)
	assert.Equal(t, "m", all[0].Name())
	res := reg.Execute(context.Background(), agenttool.ToolCall{ID: "1", Name: "m", Arguments: []byte(`{}`)})
	require.True(t, res.Success)
	id, _ := res.Metadata.Get(agenttool.MetaCallID)
	assert.Equal(t, "1", id)
}
