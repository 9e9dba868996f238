package field

import (
	"strconv"
	"strings"
)

// Map converts a decoded JSON value to a map[string]any.
// Returns nil if the value is absent or not an object.
func Map(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}

// Lookup walks nested objects following keys in order.
// It returns the value at the end of the path and whether the full path
// existed. A nil map or a missing intermediate key yields (nil, false).
func Lookup(m map[string]any, keys ...string) (any, bool) {
	cur := m
	for i, key := range keys {
		if cur == nil {
			return nil, false
		}
		v, ok := cur[key]
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return v, true
		}
		cur = Map(v)
	}
	return nil, false
}

// String returns the string at the given path, or "" when the path is
// absent or the value is not a string.
func String(m map[string]any, keys ...string) string {
	v, ok := Lookup(m, keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Bool returns the truthiness of the value at the given path.
// Absent paths are false.
func Bool(m map[string]any, keys ...string) bool {
	v, ok := Lookup(m, keys...)
	if !ok {
		return false
	}
	return Truthy(v)
}

// Float returns the numeric value at the given path.
// The second return value reports whether a parseable number was found.
func Float(m map[string]any, keys ...string) (float64, bool) {
	v, ok := Lookup(m, keys...)
	if !ok {
		return 0, false
	}
	return ParseFloat(v)
}

// Int returns the value at the given path truncated to an int, or 0 when
// the path is absent or not numeric.
func Int(m map[string]any, keys ...string) int {
	f, ok := Float(m, keys...)
	if !ok {
		return 0
	}
	return int(f)
}

// Slice returns the array at the given path, or nil when the path is
// absent or the value is not an array.
func Slice(m map[string]any, keys ...string) []any {
	v, ok := Lookup(m, keys...)
	if !ok {
		return nil
	}
	s, _ := v.([]any)
	return s
}

// Stringify renders a decoded JSON scalar as a string. Numbers render
// without a trailing ".0" so numeric student ids survive the JSON
// round-trip intact. Non-scalar values render as "".
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ParseFloat coerces a decoded JSON value to a float64.
// It accepts numbers and numeric strings. Any other value, including a
// malformed numeric string, reports (0, false) rather than an error so
// that heuristics can treat parse failure as "not triggered".
func ParseFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Truthy reports whether a decoded JSON value counts as "set" for flag
// derivation: true booleans, non-zero numbers, non-empty strings, and
// non-empty collections. This mirrors how the proctoring clients encode
// optional boolean signals (sometimes as 0/1, sometimes as true/false).
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}
