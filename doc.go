// Package agenttool is a small framework for exposing operations to LLMs as
// function-calling tools.
//
// # Overview
//
// A tool is a name, a description, an ordered list of parameter schemas, and a
// run function. New wraps these in a uniform envelope: Execute fills in
// parameter defaults, validates the parameters as given (collecting every
// violation, type mismatches included), invokes the run function, and reports the
// outcome as a ToolResult with timing metadata. Execute never returns a Go
// error; failures are reported with a code (VALIDATION_ERROR, EXECUTION_ERROR,
// or whatever code the run error carries via CodedError).
//
// Sanitize coerces loosely typed input toward the declared types. Execute does
// not call it; callers that want coercion apply it before executing.
//
// Tools are collected in a Registry, which exports OpenAI-style function
// descriptions and dispatches ToolCalls by name.
//
// # Example
//
//	weather := agenttool.MustNew(agenttool.ToolConfig{
//		Name:        "weather",
//		Description: "Get the weather for a city",
//		Parameters: agenttool.Parameters{
//			agenttool.Param("city", agenttool.String("City name").AsRequired()),
//		},
//	}, func(ctx context.Context, p map[string]any) (any, error) {
//		return map[string]any{"temp": 22.5}, nil
//	})
//	reg := agenttool.NewRegistry()
//	if err := reg.Register(weather); err != nil { ... }
//	fns := reg.OpenAIFunctions() // send to the LLM
//	res := reg.Execute(ctx, agenttool.ToolCall{Name: "weather", Arguments: []byte(`{"city":"Oslo"}`)})
package agenttool
