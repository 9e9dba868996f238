package field

import "testing"

// TestLookup verifies nested path traversal over decoded JSON objects.
func TestLookup(t *testing.T) {
	t.Parallel()

	m := map[string]any{
		"behaviorAnalytics": map[string]any{
			"wordsPerMinute": 87.5,
			"pasteFromExternal": true,
		},
		"comprehensiveMetrics": map[string]any{
			"academicIntegrityMetrics": map[string]any{
				"attentionMetrics": map[string]any{
					"tabSwitches": float64(4),
				},
			},
		},
		"notAMap": "scalar",
	}

	t.Run("single key", func(t *testing.T) {
		t.Parallel()
		v, ok := Lookup(m, "notAMap")
		if !ok || v != "scalar" {
			t.Errorf("expected (scalar, true), got (%v, %v)", v, ok)
		}
	})

	t.Run("deep path", func(t *testing.T) {
		t.Parallel()
		v, ok := Lookup(m, "comprehensiveMetrics", "academicIntegrityMetrics", "attentionMetrics", "tabSwitches")
		if !ok || v != float64(4) {
			t.Errorf("expected (4, true), got (%v, %v)", v, ok)
		}
	})

	t.Run("missing intermediate key", func(t *testing.T) {
		t.Parallel()
		if _, ok := Lookup(m, "comprehensiveMetrics", "missing", "tabSwitches"); ok {
			t.Error("expected lookup to fail on missing intermediate key")
		}
	})

	t.Run("scalar in the middle of a path", func(t *testing.T) {
		t.Parallel()
		if _, ok := Lookup(m, "notAMap", "child"); ok {
			t.Error("expected lookup through a scalar to fail")
		}
	})

	t.Run("nil map", func(t *testing.T) {
		t.Parallel()
		if _, ok := Lookup(nil, "anything"); ok {
			t.Error("expected lookup on nil map to fail")
		}
	})
}

// TestParseFloat exercises the parse-or-default numeric coercion.
// Malformed values must report failure, never panic or error.
func TestParseFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float64", 119.99, 119.99, true},
		{"int", 42, 42, true},
		{"numeric string", "120.0", 120.0, true},
		{"numeric string with spaces", " 88 ", 88, true},
		{"non-numeric string", "fast", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
		{"object", map[string]any{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseFloat(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseFloat(%v) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// TestTruthy documents which values count as "set" for flag derivation.
func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"true", true, true},
		{"false", false, false},
		{"one", float64(1), true},
		{"zero", float64(0), false},
		{"non-empty string", "yes", true},
		{"empty string", "", false},
		{"non-empty slice", []any{1}, true},
		{"empty slice", []any{}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truthy(tt.input); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestAccessors covers the typed accessors' default behavior over absent
// and wrong-typed fields.
func TestAccessors(t *testing.T) {
	t.Parallel()

	m := map[string]any{
		"ba": map[string]any{
			"copyPasteEvents": float64(3),
			"wpm":             "150",
			"flag":            true,
		},
		"events": []any{"a", "b"},
	}

	t.Run("Int truncates", func(t *testing.T) {
		t.Parallel()
		if got := Int(m, "ba", "copyPasteEvents"); got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
	})

	t.Run("Int defaults to zero", func(t *testing.T) {
		t.Parallel()
		if got := Int(m, "ba", "missing"); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	t.Run("Float parses numeric string", func(t *testing.T) {
		t.Parallel()
		got, ok := Float(m, "ba", "wpm")
		if !ok || got != 150 {
			t.Errorf("expected (150, true), got (%v, %v)", got, ok)
		}
	})

	t.Run("Bool on absent path is false", func(t *testing.T) {
		t.Parallel()
		if Bool(m, "ba", "missing") {
			t.Error("expected false for absent path")
		}
	})

	t.Run("Slice returns nil for wrong type", func(t *testing.T) {
		t.Parallel()
		if got := Slice(m, "ba"); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("Slice returns array", func(t *testing.T) {
		t.Parallel()
		if got := Slice(m, "events"); len(got) != 2 {
			t.Errorf("expected 2 elements, got %v", got)
		}
	})
}
