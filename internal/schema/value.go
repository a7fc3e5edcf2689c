package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Object is a decoded mapping node. It remembers which keys were read so
// that Done can reject keys nobody asked for.
type Object struct {
	path   Path
	fields map[string]any
	seen   map[string]bool
}

// AsObject accepts the mapping shapes produced by the supported decoders.
func AsObject(path Path, v any) (*Object, error) {
	switch m := v.(type) {
	case map[string]any:
		return &Object{path: path, fields: m, seen: make(map[string]bool, len(m))}, nil
	case map[any]any:
		fields := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, Errorf(path, "mapping key %v is not a string", k)
			}
			fields[key] = val
		}
		return &Object{path: path, fields: fields, seen: make(map[string]bool, len(m))}, nil
	case nil:
		return nil, Errorf(path, "expected a mapping, got nothing")
	default:
		return nil, Errorf(path, "expected a mapping, got %s", kindOf(v))
	}
}

// Path returns the path of the object itself.
func (o *Object) Path() Path { return o.path }

// Has reports whether key is present (a null value counts as absent).
func (o *Object) Has(key string) bool {
	v, ok := o.fields[key]
	return ok && v != nil
}

// Raw returns the value at key and marks it as read.
func (o *Object) Raw(key string) (any, bool) {
	o.seen[key] = true
	v, ok := o.fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Keys returns every key in sorted order and marks them as read.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
		o.seen[k] = true
	}
	slices.Sort(keys)
	return keys
}

// String reads an optional string field; absent yields "".
func (o *Object) String(key string) (string, error) {
	v, ok := o.Raw(key)
	if !ok {
		return "", nil
	}
	return String(o.path.Field(key), v)
}

// RequiredString reads a string field that must be present and non-blank.
func (o *Object) RequiredString(key string) (string, error) {
	s, err := o.String(key)
	if err != nil {
		return "", err
	}
	if isBlank(s) {
		return "", Errorf(o.path.Field(key), "required field is missing or empty")
	}
	return s, nil
}

// Bool reads an optional boolean field; absent yields false.
func (o *Object) Bool(key string) (bool, error) {
	v, ok := o.Raw(key)
	if !ok {
		return false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, Errorf(o.path.Field(key), "expected a boolean, got %s", kindOf(v))
	}
	return b, nil
}

// Int reads an optional integer field; absent yields 0.
func (o *Object) Int(key string) (int, error) {
	v, ok := o.Raw(key)
	if !ok {
		return 0, nil
	}
	return Int(o.path.Field(key), v)
}

// Object reads an optional nested mapping; absent yields nil.
func (o *Object) Object(key string) (*Object, error) {
	v, ok := o.Raw(key)
	if !ok {
		return nil, nil
	}
	return AsObject(o.path.Field(key), v)
}

// List reads an optional sequence; absent yields nil.
func (o *Object) List(key string) ([]any, error) {
	v, ok := o.Raw(key)
	if !ok {
		return nil, nil
	}
	return List(o.path.Field(key), v)
}

// Done fails on the first (sorted) key that was never read.
func (o *Object) Done() error {
	var unknown []string
	for k := range o.fields {
		if !o.seen[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return Errorf(o.path.Field(unknown[0]), "unknown field")
}

// String converts a scalar node to a string.
func String(path Path, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", Errorf(path, "expected a string, got %s", kindOf(v))
	}
	return s, nil
}

// Int converts a numeric node to an int. JSON, HCL and CUE decoders hand
// numbers over as float64 or json.Number, so integral floats are accepted.
// Integers beyond the int32 range are clamped to it, which keeps them out
// of range for the caller's own bounds check however they were spelled.
func Int(path Path, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return clampInt(int64(n)), nil
	case int64:
		return clampInt(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return math.MaxInt32, nil
		}
		return int(n), nil
	case float64:
		return floatInt(path, n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return clampInt(i), nil
		}
		f, err := n.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return 0, Errorf(path, "expected an integer, got %s", n)
		}
		return floatInt(path, f)
	default:
		return 0, Errorf(path, "expected an integer, got %s", kindOf(v))
	}
}

func clampInt(n int64) int {
	return int(max(min(n, math.MaxInt32), math.MinInt32))
}

func floatInt(path Path, f float64) (int, error) {
	if math.IsNaN(f) || (!math.IsInf(f, 0) && f != math.Trunc(f)) {
		return 0, Errorf(path, "expected an integer, got %v", f)
	}
	return int(max(min(f, math.MaxInt32), math.MinInt32)), nil
}

// List converts a sequence node.
func List(path Path, v any) ([]any, error) {
	l, ok := v.([]any)
	if !ok {
		return nil, Errorf(path, "expected a sequence, got %s", kindOf(v))
	}
	return l, nil
}

// Plain deep-copies a decoded value into map[string]any / []any form so
// free-form option blocks do not alias decoder-owned memory.
func Plain(path Path, v any) (any, error) {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		obj, err := AsObject(path, t)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(obj.fields))
		for _, k := range obj.Keys() {
			val, err := Plain(path.Field(k), obj.fields[k])
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			val, err := Plain(path.Index(i), item)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	default:
		return t, nil
	}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int, int64, uint64, float64, json.Number:
		return "a number"
	case []any:
		return "a sequence"
	case map[string]any, map[any]any:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
