package agenttool

import (
	"fmt"
	"reflect"
)

// Args is a read-only view over sanitized tool parameters. Accessors return
// the zero value when a parameter is absent or of another kind, so tools
// should rely on validation for anything required.
type Args map[string]any

// String returns the string parameter name.
func (a Args) String(name string) string {
	v := indirect(a[name])
	if KindOf(v) != KindString {
		return ""
	}
	return reflect.ValueOf(v).String()
}

// Float returns the numeric parameter name.
func (a Args) Float(name string) float64 {
	f, _ := toFloat(indirect(a[name]))
	return f
}

// Int returns the numeric parameter name truncated to an int.
func (a Args) Int(name string) int {
	f, _ := toFloat(indirect(a[name]))
	return int(f)
}

// Bool returns the boolean parameter name.
func (a Args) Bool(name string) bool {
	v := indirect(a[name])
	if KindOf(v) != KindBoolean {
		return false
	}
	return reflect.ValueOf(v).Bool()
}

// Strings returns the array parameter name with every element formatted as a
// string. It returns nil when the parameter is absent or not an array.
func (a Args) Strings(name string) []string {
	v := indirect(a[name])
	if KindOf(v) != KindArray {
		return nil
	}
	items := elements(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = indirect(item)
		if KindOf(item) == KindString {
			out = append(out, reflect.ValueOf(item).String())
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// Object returns the object parameter name as a map.
func (a Args) Object(name string) map[string]any {
	v := indirect(a[name])
	if KindOf(v) != KindObject {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}

// Has reports whether name is present and not null.
func (a Args) Has(name string) bool {
	return KindOf(a[name]) != KindNull
}

// CloneValue returns a deep copy of the JSON-shaped parts of v: maps with
// string keys and slices of any are copied recursively. Other values are
// returned as is.
func CloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return x
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = CloneValue(e)
		}
		return out
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	}
	return v
}
