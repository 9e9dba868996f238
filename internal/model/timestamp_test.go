package model

import (
	"testing"
	"time"
)

// TestNormalizeTimestamp covers numeric epoch values, ISO strings, and
// the pass-through behavior for unparseable input.
func TestNormalizeTimestamp(t *testing.T) {
	t.Parallel()

	t.Run("epoch seconds", func(t *testing.T) {
		t.Parallel()
		got := NormalizeTimestamp(float64(1700000000))
		want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
		if !got.(time.Time).Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("epoch milliseconds above threshold", func(t *testing.T) {
		t.Parallel()
		got := NormalizeTimestamp(float64(1700000000000))
		want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
		if !got.(time.Time).Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("RFC3339 with Z offset", func(t *testing.T) {
		t.Parallel()
		got := NormalizeTimestamp("2024-02-01T10:30:00Z")
		want := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
		if !got.(time.Time).Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("RFC3339 with numeric offset converts to UTC", func(t *testing.T) {
		t.Parallel()
		got := NormalizeTimestamp("2024-02-01T12:30:00+02:00")
		want := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
		if !got.(time.Time).Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("naive date-time parses as UTC", func(t *testing.T) {
		t.Parallel()
		got := NormalizeTimestamp("2024-02-01T10:30:00")
		want := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
		if !got.(time.Time).Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("unparseable string passes through", func(t *testing.T) {
		t.Parallel()
		got := NormalizeTimestamp("not-a-date")
		if got != "not-a-date" {
			t.Errorf("expected pass-through, got %v", got)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		if got := NormalizeTimestamp(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("zero number becomes nil", func(t *testing.T) {
		t.Parallel()
		if got := NormalizeTimestamp(float64(0)); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("empty string becomes nil", func(t *testing.T) {
		t.Parallel()
		if got := NormalizeTimestamp(""); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("non-numeric non-string passes through", func(t *testing.T) {
		t.Parallel()
		in := []any{"x"}
		got := NormalizeTimestamp(in)
		if _, ok := got.([]any); !ok {
			t.Errorf("expected pass-through, got %v", got)
		}
	})
}
