package agenttool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(t *testing.T, params Parameters, opts ...ToolOption) Tool {
	t.Helper()
	tool, err := New(ToolConfig{Name: "echo", Description: "Echo params", Parameters: params},
		func(_ context.Context, p map[string]any) (any, error) {
			return p, nil
		}, opts...)
	require.NoError(t, err)
	return tool
}

func TestNew_Invalid(t *testing.T) {
	run := func(context.Context, map[string]any) (any, error) { return nil, nil }
	tests := []struct {
		name string
		cfg  ToolConfig
		run  RunFunc
	}{
		{"empty name", ToolConfig{Name: "  "}, run},
		{"nil run", ToolConfig{Name: "x"}, nil},
		{"duplicate parameter", ToolConfig{Name: "x", Parameters: Parameters{Param("a", String("")), Param("a", String(""))}}, run},
		{"unknown type", ToolConfig{Name: "x", Parameters: Parameters{Param("a", ParameterSchema{Type: "uuid"})}}, run},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.run)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTool)
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew(ToolConfig{}, nil) })
}

func TestExecute_Success(t *testing.T) {
	tool := echoTool(t, Parameters{
		Param("collection", String("").AsRequired()),
		Param("limit", Integer("").WithDefault(100)),
	})
	res := tool.Execute(context.Background(), map[string]any{"collection": "articles", "limit": 5})
	require.True(t, res.Success)
	assert.Nil(t, res.Error)
	assert.Equal(t, map[string]any{"collection": "articles", "limit": 5}, res.Data)
	assert.Equal(t, "echo", res.Metadata.OperationName)
	assert.GreaterOrEqual(t, res.Metadata.ExecutionTimeMs, int64(0))
	assert.False(t, res.Metadata.Timestamp.IsZero())
}

func TestExecute_AppliesDefaults(t *testing.T) {
	tool := echoTool(t, Parameters{Param("limit", Integer("").WithDefault(100))})
	res := tool.Execute(context.Background(), nil)
	require.True(t, res.Success)
	assert.Equal(t, map[string]any{"limit": 100}, res.Data)
}

func TestExecute_ValidationError(t *testing.T) {
	called := false
	tool, err := New(ToolConfig{
		Name: "create_user",
		Parameters: Parameters{
			Param("email", String("").AsRequired()),
			Param("status", String("").WithEnum("active", "draft")),
		},
	}, func(context.Context, map[string]any) (any, error) {
		called = true
		return nil, nil
	})
	require.NoError(t, err)

	res := tool.Execute(context.Background(), map[string]any{"status": "gone"})
	assert.False(t, called, "run must not be invoked on invalid input")
	require.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, CodeValidation, res.Error.Code)
	assert.Contains(t, res.Error.Message, "Missing required parameter: email")
	assert.Contains(t, res.Error.Message, "status must be one of: active, draft")
	assert.Len(t, ValidationErrors(res), 2)
	assert.True(t, IsValidationFailure(res))
	assert.Equal(t, "create_user", res.Metadata.OperationName)
	assert.False(t, res.Metadata.Timestamp.IsZero())
}

func TestExecute_TypeMismatch(t *testing.T) {
	params := Parameters{
		Param("flag", Boolean("")),
		Param("tags", Array("", String(""))),
		Param("name", String("")),
		Param("n", Integer("")),
	}
	tests := []struct {
		name  string
		input map[string]any
		want  string
	}{
		{"boolean from string", map[string]any{"flag": "banana"}, "flag must be of type boolean"},
		{"array from string", map[string]any{"tags": "x"}, "tags must be of type array"},
		{"string from number", map[string]any{"name": 42}, "name must be of type string"},
		{"integer from string", map[string]any{"n": "3.7"}, "n must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			tool, err := New(ToolConfig{Name: "typed", Parameters: params},
				func(context.Context, map[string]any) (any, error) {
					called = true
					return nil, nil
				})
			require.NoError(t, err)

			res := tool.Execute(context.Background(), tt.input)
			assert.False(t, called)
			require.False(t, res.Success)
			assert.Equal(t, CodeValidation, res.Error.Code)
			assert.Equal(t, "Validation failed: "+tt.want, res.Error.Message)
		})
	}
}

func TestExecute_SanitizedInput(t *testing.T) {
	params := Parameters{Param("n", Integer("")), Param("flag", Boolean(""))}
	tool := echoTool(t, params)
	res := tool.Execute(context.Background(), Sanitize(map[string]any{"n": "3.7", "flag": "1"}, params))
	require.True(t, res.Success, res.Error)
	assert.Equal(t, map[string]any{"n": float64(3), "flag": true}, res.Data)
}

func TestExecute_PlainError(t *testing.T) {
	boom := errors.New("boom")
	tool, err := New(ToolConfig{Name: "fail"}, func(context.Context, map[string]any) (any, error) {
		return nil, boom
	})
	require.NoError(t, err)
	res := tool.Execute(context.Background(), map[string]any{})
	require.False(t, res.Success)
	assert.Equal(t, "boom", res.Error.Message)
	assert.Equal(t, CodeExecution, res.Error.Code)
	assert.Same(t, boom, res.Error.Details)
	assert.Equal(t, "fail", res.Metadata.OperationName)
	assert.GreaterOrEqual(t, res.Metadata.ExecutionTimeMs, int64(0))
}

type emptyError struct{}

func (emptyError) Error() string { return "" }

func TestExecute_ErrorWithoutMessage(t *testing.T) {
	tool, err := New(ToolConfig{Name: "fail"}, func(context.Context, map[string]any) (any, error) {
		return nil, emptyError{}
	})
	require.NoError(t, err)
	res := tool.Execute(context.Background(), nil)
	assert.Equal(t, "Unknown error occurred", res.Error.Message)
	assert.Equal(t, CodeExecution, res.Error.Code)
}

func TestExecute_CodedError(t *testing.T) {
	tool, err := New(ToolConfig{Name: "fail"}, func(context.Context, map[string]any) (any, error) {
		return nil, WrapError("FORBIDDEN", errors.New("no access"))
	})
	require.NoError(t, err)
	res := tool.Execute(context.Background(), nil)
	assert.Equal(t, "FORBIDDEN", res.Error.Code)
	assert.Equal(t, "no access", res.Error.Message)
}

func TestExecute_DeadlineError(t *testing.T) {
	tool, err := New(ToolConfig{Name: "slow"}, func(ctx context.Context, _ map[string]any) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	res := tool.Execute(ctx, nil)
	assert.Equal(t, CodeTimeout, res.Error.Code)
}

func TestExecute_Panic(t *testing.T) {
	tool, err := New(ToolConfig{Name: "panic"}, func(context.Context, map[string]any) (any, error) {
		panic("oops")
	})
	require.NoError(t, err)
	res := tool.Execute(context.Background(), nil)
	require.False(t, res.Success)
	assert.Equal(t, CodeExecution, res.Error.Code)
	assert.Equal(t, "panic: oops", res.Error.Message)
}

func TestExecute_Clock(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 250 * time.Millisecond)
	}
	tool := echoTool(t, nil, WithClock(clock))
	res := tool.Execute(context.Background(), nil)
	assert.Equal(t, base, res.Metadata.Timestamp)
	assert.Equal(t, int64(250), res.Metadata.ExecutionTimeMs)
}

func TestExecute_TimestampISO8601(t *testing.T) {
	tool := echoTool(t, nil)
	res := tool.Execute(context.Background(), nil)
	b, err := json.Marshal(res)
	require.NoError(t, err)
	var doc struct {
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	ts, ok := doc.Metadata["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)
}

func TestTool_Config(t *testing.T) {
	tool, err := New(ToolConfig{
		Name:        "items",
		Description: "Query items",
		Category:    "items",
		Parameters:  Parameters{Param("collection", String("").AsRequired())},
		Examples:    []Example{{Description: "all posts", Arguments: map[string]any{"collection": "posts"}}},
	}, func(context.Context, map[string]any) (any, error) { return nil, nil }, WithReadOnly())
	require.NoError(t, err)

	cfg := tool.Config()
	assert.Equal(t, "items", cfg.Name)
	assert.Equal(t, "items", cfg.Category)
	require.Len(t, cfg.Examples, 1)
	cfg.Parameters[0].Name = "mutated"
	assert.Equal(t, "collection", tool.Config().Parameters[0].Name)

	meta, ok := tool.(ToolMetadata)
	require.True(t, ok)
	assert.True(t, meta.ReadOnly())
	assert.Equal(t, []string{"collection"}, tool.OpenAIFunction().Parameters.Required)
}

func TestTool_ConfigIsolated(t *testing.T) {
	called := false
	tool, err := New(ToolConfig{
		Name: "items",
		Parameters: Parameters{
			Param("tags", Array("", Number(""))),
			Param("filter", Object("", Param("status", String("").WithEnum("draft", "published")))),
			Param("limit", Integer("").WithDefault(10).WithExtension("minimum", 1)),
		},
		Examples: []Example{{Arguments: map[string]any{"filter": map[string]any{"status": "draft"}}}},
	}, func(context.Context, map[string]any) (any, error) {
		called = true
		return "ok", nil
	})
	require.NoError(t, err)
	before := tool.OpenAIFunction()
	input := map[string]any{"tags": []any{1, 2}, "filter": map[string]any{"status": "draft"}}

	cfg := tool.Config()
	cfg.Parameters[0].Schema.Items.Type = TypeString
	cfg.Parameters[1].Schema.Properties[0].Schema.Type = TypeBoolean
	cfg.Parameters[1].Schema.Properties[0].Schema.Enum[0] = "archived"
	cfg.Parameters[2].Schema.Extensions["minimum"] = 100
	cfg.Examples[0].Arguments["filter"].(map[string]any)["status"] = "gone"

	res := tool.Execute(context.Background(), input)
	require.True(t, res.Success, res.Error)
	assert.True(t, called)

	fresh := tool.Config()
	assert.Equal(t, TypeNumber, fresh.Parameters[0].Schema.Items.Type)
	assert.Equal(t, TypeString, fresh.Parameters[1].Schema.Properties[0].Schema.Type)
	assert.Equal(t, []any{"draft", "published"}, fresh.Parameters[1].Schema.Properties[0].Schema.Enum)
	assert.Equal(t, 1, fresh.Parameters[2].Schema.Extensions["minimum"])
	assert.Equal(t, "draft", fresh.Examples[0].Arguments["filter"].(map[string]any)["status"])
	assert.Equal(t, before, tool.OpenAIFunction())
}

func TestResultError(t *testing.T) {
	assert.NoError(t, ResultError(ToolResult{Success: true}))

	boom := errors.New("boom")
	assert.Same(t, boom, ResultError(ToolResult{Error: &ToolError{Message: "boom", Code: CodeExecution, Details: boom}}))

	err := ResultError(ToolResult{Error: &ToolError{Message: "Validation failed: x", Code: CodeValidation}})
	assert.ErrorIs(t, err, ErrValidation)
	var coded CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, CodeValidation, coded.Code())
}
