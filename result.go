package agenttool

import (
	"encoding/json"
	"maps"
	"time"
)

// ToolResult is the outcome of one Execute call. Exactly one of Data (on
// success) or Error (on failure) is meaningful; Metadata is always set.
type ToolResult struct {
	Success  bool       `json:"success"`
	Data     any        `json:"data,omitempty"`
	Error    *ToolError `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

// ToolError describes a failed execution.
type ToolError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	// Details is the raw error for execution failures, or []FieldError for
	// validation failures.
	Details any `json:"-"`
}

type toolErrorJSON struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// MarshalJSON renders plain errors in Details as their message; errors that
// know how to marshal themselves are kept as-is.
func (e ToolError) MarshalJSON() ([]byte, error) {
	out := toolErrorJSON{Message: e.Message, Code: e.Code, Details: e.Details}
	if err, ok := e.Details.(error); ok {
		if _, marshals := err.(json.Marshaler); !marshals {
			out.Details = err.Error()
		}
	}
	return json.Marshal(out)
}

// Metadata accompanies every ToolResult. Fields holds free-form extras (call
// id, cache state, ...) and is inlined when marshaled; it cannot shadow the
// fixed keys.
type Metadata struct {
	Timestamp       time.Time
	OperationName   string
	ExecutionTimeMs int64
	Fields          map[string]any
}

// Set stores an extra metadata field.
func (m *Metadata) Set(key string, v any) {
	if m.Fields == nil {
		m.Fields = make(map[string]any)
	}
	m.Fields[key] = v
}

// Get returns an extra metadata field.
func (m Metadata) Get(key string) (any, bool) {
	v, ok := m.Fields[key]
	return v, ok
}

const (
	metaTimestamp     = "timestamp"
	metaOperationName = "operationName"
	metaExecutionTime = "executionTimeMs"
)

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3+len(m.Fields))
	maps.Copy(out, m.Fields)
	out[metaTimestamp] = m.Timestamp.UTC().Format(time.RFC3339Nano)
	out[metaOperationName] = m.OperationName
	out[metaExecutionTime] = m.ExecutionTimeMs
	return json.Marshal(out)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	if s, ok := raw[metaTimestamp].(string); ok {
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		m.Timestamp = ts
	}
	m.OperationName, _ = raw[metaOperationName].(string)
	if f, ok := raw[metaExecutionTime].(float64); ok {
		m.ExecutionTimeMs = int64(f)
	}
	delete(raw, metaTimestamp)
	delete(raw, metaOperationName)
	delete(raw, metaExecutionTime)
	if len(raw) > 0 {
		m.Fields = raw
	}
	return nil
}

// clone returns a copy of r whose metadata fields can be changed without
// affecting r.
func (r ToolResult) clone() ToolResult {
	r.Metadata.Fields = maps.Clone(r.Metadata.Fields)
	return r
}

func newMetadata(name string, start time.Time, elapsed time.Duration) Metadata {
	ms := elapsed.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return Metadata{Timestamp: start, OperationName: name, ExecutionTimeMs: ms}
}

// Failure builds a failed result for name. It is used for errors raised outside
// a tool (unknown tool, undecodable arguments).
func Failure(name, code string, err error, start time.Time) ToolResult {
	return ToolResult{
		Success:  false,
		Error:    &ToolError{Message: errorMessage(err), Code: code, Details: err},
		Metadata: newMetadata(name, start, time.Since(start)),
	}
}
