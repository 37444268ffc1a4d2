package agenttool

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// tool is the implementation of Tool built by New.
type tool struct {
	cfg      ToolConfig
	function Function
	run      RunFunc
	opts     toolOptions
}

// New builds a Tool from its identity and run function. Execute fills in
// parameter defaults, validates the result against cfg.Parameters, then calls run.
// Returns an error wrapping ErrInvalidTool if the name is empty, run is nil,
// parameter names collide, or the parameter schema is not valid JSON Schema.
func New(cfg ToolConfig, run RunFunc, opts ...ToolOption) (Tool, error) {
	o := toolOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("%w: tool name is required", ErrInvalidTool)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s: run function is required", ErrInvalidTool, cfg.Name)
	}
	if err := cfg.Parameters.check(""); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTool, cfg.Name, err)
	}
	cfg = cfg.clone()
	fn := openAIFunction(cfg.clone())
	// Compiled only to reject schemas that are not valid JSON Schema; Execute
	// validates with Validate, which owns the error messages.
	if _, err := compileParameters(fn.Parameters.document()); err != nil {
		return nil, fmt.Errorf("%w: %s: parameters schema: %v", ErrInvalidTool, cfg.Name, err)
	}
	return &tool{cfg: cfg, function: fn, run: run, opts: o}, nil
}

// MustNew is like New but panics on error. Use it for package-level tool tables.
func MustNew(cfg ToolConfig, run RunFunc, opts ...ToolOption) Tool {
	t, err := New(cfg, run, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *tool) Name() string             { return t.cfg.Name }
func (t *tool) Description() string      { return t.cfg.Description }
func (t *tool) Category() string         { return t.cfg.Category }
func (t *tool) Config() ToolConfig       { return t.cfg.clone() }
func (t *tool) OpenAIFunction() Function { return t.function }
func (t *tool) ReadOnly() bool           { return t.opts.readOnly }

// Execute runs the tool and wraps the outcome in a ToolResult.
func (t *tool) Execute(ctx context.Context, params map[string]any) (res ToolResult) {
	start := t.opts.now()
	defer func() {
		res.Metadata = newMetadata(t.cfg.Name, start, t.opts.now().Sub(start))
	}()

	params = ApplyDefaults(params, t.cfg.Parameters)
	if v := Validate(params, t.cfg.Parameters); !v.Valid {
		return ToolResult{
			Error: &ToolError{
				Message: "Validation failed: " + strings.Join(v.Messages(), "; "),
				Code:    CodeValidation,
				Details: v.Errors,
			},
		}
	}

	data, err := t.invoke(ctx, params)
	if err != nil {
		return ToolResult{
			Error: &ToolError{Message: errorMessage(err), Code: errorCode(err), Details: err},
		}
	}
	return ToolResult{Success: true, Data: data}
}

// invoke calls run, converting a panic into an error.
func (t *tool) invoke(ctx context.Context, params map[string]any) (data any, err error) {
	defer func() {
		if p := recover(); p != nil {
			data = nil
			err = &panicError{p: p}
		}
	}()
	return t.run(ctx, params)
}

// ValidationErrors returns the field errors of a failed validation result.
func ValidationErrors(res ToolResult) []FieldError {
	if res.Error == nil || res.Error.Code != CodeValidation {
		return nil
	}
	fe, _ := res.Error.Details.([]FieldError)
	return fe
}

// IsValidationFailure reports whether res failed input validation.
func IsValidationFailure(res ToolResult) bool {
	return res.Error != nil && res.Error.Code == CodeValidation
}

// ResultError converts a failed result to a Go error; it returns nil on success.
// The returned error carries the result's code.
func ResultError(res ToolResult) error {
	if res.Success || res.Error == nil {
		return nil
	}
	if err, ok := res.Error.Details.(error); ok && res.Error.Code == errorCode(err) {
		return err
	}
	e := NewError(res.Error.Code, res.Error.Message)
	if res.Error.Code == CodeValidation {
		e.Err = ErrValidation
	}
	return e
}

var (
	_ Tool         = (*tool)(nil)
	_ ToolMetadata = (*tool)(nil)
)
