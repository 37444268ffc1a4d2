package agenttool

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/google/jsonschema-go/jsonschema"
)

// ParamType is the declared type of a parameter.
type ParamType string

// Parameter types understood by the validator and sanitizer.
const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
	TypeNull    ParamType = "null"
)

// Valid reports whether t is one of the known parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject, TypeNull:
		return true
	}
	return false
}

// ParameterSchema describes the expected shape of one parameter. It is a tree:
// Items applies to arrays, Properties to objects. An array without Items accepts
// any element and an object without Properties accepts any shape.
//
// Extensions carries vendor keywords (e.g. "format", "minimum") that are emitted
// with the schema but never interpreted by the validator. They cannot override
// the core keywords.
type ParameterSchema struct {
	Type        ParamType
	Description string
	Required    bool
	Enum        []any
	Default     any
	Items       *ParameterSchema
	Properties  Parameters
	Extensions  map[string]any
}

// Parameter is a named ParameterSchema.
type Parameter struct {
	Name   string
	Schema ParameterSchema
}

// Clone returns a deep copy of s: nested items, properties, enum values,
// default and extensions are not shared with s.
func (s ParameterSchema) Clone() ParameterSchema {
	if s.Enum != nil {
		enum := make([]any, len(s.Enum))
		for i, v := range s.Enum {
			enum[i] = CloneValue(v)
		}
		s.Enum = enum
	}
	s.Default = CloneValue(s.Default)
	if s.Items != nil {
		items := s.Items.Clone()
		s.Items = &items
	}
	s.Properties = s.Properties.Clone()
	if s.Extensions != nil {
		ext := make(map[string]any, len(s.Extensions))
		for k, v := range s.Extensions {
			ext[k] = CloneValue(v)
		}
		s.Extensions = ext
	}
	return s
}

// Parameters is an ordered set of named parameter schemas. Order is declaration
// order and determines the order of the exported "required" list.
type Parameters []Parameter

// Clone returns a deep copy of p.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	out := make(Parameters, len(p))
	for i, param := range p {
		out[i] = Parameter{Name: param.Name, Schema: param.Schema.Clone()}
	}
	return out
}

// Lookup returns the schema declared for name.
func (p Parameters) Lookup(name string) (ParameterSchema, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Schema, true
		}
	}
	return ParameterSchema{}, false
}

// Names returns the parameter names in declaration order.
func (p Parameters) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}

// RequiredNames returns the names of required parameters in declaration order.
func (p Parameters) RequiredNames() []string {
	var names []string
	for _, param := range p {
		if param.Schema.Required {
			names = append(names, param.Name)
		}
	}
	return names
}

// String returns a string parameter schema.
func String(desc string) ParameterSchema {
	return ParameterSchema{Type: TypeString, Description: desc}
}

// Number returns a number parameter schema.
func Number(desc string) ParameterSchema {
	return ParameterSchema{Type: TypeNumber, Description: desc}
}

// Integer returns an integer parameter schema.
func Integer(desc string) ParameterSchema {
	return ParameterSchema{Type: TypeInteger, Description: desc}
}

// Boolean returns a boolean parameter schema.
func Boolean(desc string) ParameterSchema {
	return ParameterSchema{Type: TypeBoolean, Description: desc}
}

// Array returns an array parameter schema whose elements must satisfy items.
func Array(desc string, items ParameterSchema) ParameterSchema {
	return ParameterSchema{Type: TypeArray, Description: desc, Items: &items}
}

// Object returns an object parameter schema with the given properties.
func Object(desc string, props ...Parameter) ParameterSchema {
	return ParameterSchema{Type: TypeObject, Description: desc, Properties: props}
}

// Param pairs a name with a schema.
func Param(name string, s ParameterSchema) Parameter {
	return Parameter{Name: name, Schema: s}
}

// AsRequired returns a copy of s marked as required.
func (s ParameterSchema) AsRequired() ParameterSchema {
	s.Required = true
	return s
}

// WithDefault returns a copy of s with a default value.
func (s ParameterSchema) WithDefault(v any) ParameterSchema {
	s.Default = v
	return s
}

// WithEnum returns a copy of s restricted to the given values.
func (s ParameterSchema) WithEnum(values ...any) ParameterSchema {
	s.Enum = values
	return s
}

// WithExtension returns a copy of s carrying an extra vendor keyword.
func (s ParameterSchema) WithExtension(key string, v any) ParameterSchema {
	ext := make(map[string]any, len(s.Extensions)+1)
	maps.Copy(ext, s.Extensions)
	ext[key] = v
	s.Extensions = ext
	return s
}

// coreKeywords are the JSON keys owned by ParameterSchema fields.
var coreKeywords = map[string]bool{
	"type": true, "description": true, "required": true, "enum": true,
	"default": true, "items": true, "properties": true,
}

// JSONSchema renders s as a JSON Schema fragment. Required flags of nested
// object properties are hoisted into the object's "required" list; the flag of s
// itself is not emitted (the parent owns it).
func (s ParameterSchema) JSONSchema() map[string]any {
	out := make(map[string]any, 4+len(s.Extensions))
	for k, v := range s.Extensions {
		if !coreKeywords[k] {
			out[k] = v
		}
	}
	if s.Type != "" {
		out["type"] = string(s.Type)
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Default != nil {
		out["default"] = s.Default
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Properties) > 0 {
		out["properties"] = s.Properties.jsonProperties()
		if req := s.Properties.RequiredNames(); len(req) > 0 {
			out["required"] = req
		}
	}
	return out
}

func (p Parameters) jsonProperties() map[string]any {
	props := make(map[string]any, len(p))
	for _, param := range p {
		props[param.Name] = param.Schema.JSONSchema()
	}
	return props
}

// MarshalJSON emits the JSON Schema form of s.
func (s ParameterSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.JSONSchema())
}

var errDuplicateParameter = errors.New("duplicate parameter name")

// check verifies names are unique and types known, recursively.
func (p Parameters) check(path string) error {
	seen := make(map[string]bool, len(p))
	for _, param := range p {
		if param.Name == "" {
			return fmt.Errorf("%sempty parameter name", path)
		}
		if seen[param.Name] {
			return fmt.Errorf("%s%s: %w", path, param.Name, errDuplicateParameter)
		}
		seen[param.Name] = true
		if err := param.Schema.check(path + param.Name); err != nil {
			return err
		}
	}
	return nil
}

func (s ParameterSchema) check(path string) error {
	if s.Type != "" && !s.Type.Valid() {
		return fmt.Errorf("%s: unknown type %q", path, s.Type)
	}
	if s.Items != nil {
		if err := s.Items.check(path + "[]"); err != nil {
			return err
		}
	}
	return s.Properties.check(path + ".")
}

// compileParameters resolves the exported parameters document with a JSON
// Schema implementation, so a tool cannot advertise a schema an LLM provider
// would reject.
func compileParameters(doc map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}
