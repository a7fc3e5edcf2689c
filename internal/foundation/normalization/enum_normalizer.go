// Package normalization maps loosely written enum strings ("Production",
// " json ") onto typed values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// EnumNormalizer converts case- and whitespace-insensitive names to values
// of T and reports unknown names with the list of accepted ones.
type EnumNormalizer[T comparable] struct {
	enumName     string
	values       map[string]T
	keys         []string
	defaultValue T
}

// NewEnumNormalizer builds a normalizer. enumName is used in error messages.
func NewEnumNormalizer[T comparable](enumName string, values map[string]T, defaultValue T) *EnumNormalizer[T] {
	n := &EnumNormalizer[T]{
		enumName:     enumName,
		values:       make(map[string]T, len(values)),
		keys:         make([]string, 0, len(values)),
		defaultValue: defaultValue,
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the value for raw, or the default when raw is unknown.
func (n *EnumNormalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithValidation returns the value for raw or an error naming the
// accepted values.
func (n *EnumNormalizer[T]) NormalizeWithValidation(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.enumName, raw, strings.Join(n.keys, ", "))
}

// IsValid reports whether raw names a known value.
func (n *EnumNormalizer[T]) IsValid(raw string) bool {
	_, ok := n.values[clean(raw)]
	return ok
}

// ValidValues returns the accepted names, sorted.
func (n *EnumNormalizer[T]) ValidValues() []string {
	return slices.Clone(n.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
