package agenttool

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FieldError is one validation failure. Field is a path such as "tags[0]" or
// "filter.status".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Message }

// ValidationResult is the outcome of Validate. Valid is true iff Errors is empty.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Messages returns the error messages in order.
func (r ValidationResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}

func newResult(errs []FieldError) ValidationResult {
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func missing(field string) FieldError {
	return FieldError{Field: field, Message: "Missing required parameter: " + field}
}

// Validate checks data against schema and collects every violation.
// Missing required parameters are reported first, in declaration order, then
// the values present in data are checked in declaration order. Keys without a
// schema entry are permitted.
func Validate(data map[string]any, schema Parameters) ValidationResult {
	var errs []FieldError
	for _, param := range schema {
		if !param.Schema.Required {
			continue
		}
		if _, ok := data[param.Name]; !ok {
			errs = append(errs, missing(param.Name))
		}
	}
	for _, param := range schema {
		value, ok := data[param.Name]
		if !ok {
			continue
		}
		errs = append(errs, ValidateValue(value, param.Schema, param.Name).Errors...)
	}
	return newResult(errs)
}

// ValidateValue checks one value against its schema, recursing into array
// items and declared object properties.
func ValidateValue(value any, schema ParameterSchema, fieldName string) ValidationResult {
	return newResult(validateValue(value, schema, fieldName))
}

func validateValue(value any, schema ParameterSchema, fieldName string) []FieldError {
	value = indirect(value)
	kind := KindOf(value)
	if kind == KindNull {
		if schema.Required {
			return []FieldError{missing(fieldName)}
		}
		return nil
	}

	var errs []FieldError
	if msg := typeError(value, kind, schema.Type); msg != "" {
		errs = append(errs, FieldError{Field: fieldName, Message: fieldName + " " + msg})
	}
	if len(schema.Enum) > 0 && !inEnum(value, schema.Enum) {
		errs = append(errs, FieldError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be one of: %s", fieldName, joinEnum(schema.Enum)),
		})
	}

	switch {
	case schema.Type == TypeArray && schema.Items != nil && kind == KindArray:
		for i, item := range elements(value) {
			errs = append(errs, validateValue(item, *schema.Items, fmt.Sprintf("%s[%d]", fieldName, i))...)
		}
	case schema.Type == TypeObject && len(schema.Properties) > 0 && kind == KindObject:
		for _, prop := range schema.Properties {
			v, ok := field(value, prop.Name)
			if !ok {
				continue
			}
			errs = append(errs, validateValue(v, prop.Schema, fieldName+"."+prop.Name)...)
		}
	}
	return errs
}

// typeError returns the violation message for value against declared, or "".
func typeError(value any, kind Kind, declared ParamType) string {
	switch declared {
	case "", TypeNull:
		return ""
	case TypeInteger:
		f, ok := toFloat(value)
		if kind != KindNumber || !ok {
			return "must be a number"
		}
		if !isWhole(f) {
			return "must be an integer"
		}
		return ""
	}
	if kind.String() != string(declared) {
		return "must be of type " + string(declared)
	}
	return ""
}

func inEnum(value any, enum []any) bool {
	f, numeric := toFloat(value)
	numeric = numeric && KindOf(value) == KindNumber
	for _, allowed := range enum {
		if numeric {
			if g, ok := toFloat(allowed); ok && KindOf(allowed) == KindNumber && f == g {
				return true
			}
			continue
		}
		if KindOf(allowed) == KindOf(value) && reflect.DeepEqual(allowed, value) {
			return true
		}
	}
	return false
}

func joinEnum(enum []any) string {
	parts := make([]string, len(enum))
	for i, v := range enum {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

// ApplyDefaults returns a copy of data with the default of every absent or
// null parameter filled in. Present values are left untouched, so type
// mismatches still reach Validate.
func ApplyDefaults(data map[string]any, schema Parameters) map[string]any {
	out := make(map[string]any, len(data)+len(schema))
	for k, v := range data {
		out[k] = v
	}
	for _, param := range schema {
		if param.Schema.Default != nil && KindOf(out[param.Name]) == KindNull {
			out[param.Name] = CloneValue(param.Schema.Default)
		}
	}
	return out
}

// Sanitize coerces loosely typed input toward the declared types and fills in
// defaults for absent or null parameters. It never fails and does not modify
// data; values it cannot coerce are left unchanged. Sanitize is not a
// substitute for Validate and Execute does not call it: callers that accept
// loose input sanitize explicitly before executing.
func Sanitize(data map[string]any, schema Parameters) map[string]any {
	out := ApplyDefaults(data, schema)
	for _, param := range schema {
		if KindOf(data[param.Name]) == KindNull {
			continue
		}
		out[param.Name] = coerce(out[param.Name], param.Schema.Type)
	}
	return out
}

func coerce(value any, declared ParamType) any {
	value = indirect(value)
	kind := KindOf(value)
	switch declared {
	case TypeInteger, TypeNumber:
		s, ok := value.(string)
		if !ok {
			return value
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return value
		}
		if declared == TypeInteger {
			f = math.Trunc(f)
		}
		return f
	case TypeBoolean:
		switch kind {
		case KindBoolean:
			return value
		case KindString:
			s := reflect.ValueOf(value).String()
			return s == "true" || s == "1"
		case KindNumber:
			f, _ := toFloat(value)
			return f != 0
		}
		return false
	case TypeString:
		switch kind {
		case KindString:
			return value
		case KindNumber:
			f, _ := toFloat(value)
			return strconv.FormatFloat(f, 'f', -1, 64)
		case KindBoolean:
			return strconv.FormatBool(reflect.ValueOf(value).Bool())
		}
		if b, err := json.Marshal(value); err == nil {
			return string(b)
		}
		return fmt.Sprint(value)
	case TypeObject:
		s, ok := value.(string)
		if !ok {
			return value
		}
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return value
		}
		return parsed
	case TypeArray:
		if kind == KindArray {
			return value
		}
		return []any{value}
	}
	return value
}
