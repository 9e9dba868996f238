package analyzer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/OrPerets/proctorscan/internal/model"
)

// newTestAnalyzer returns an analyzer with default thresholds and a
// silent logger.
func newTestAnalyzer() *Analyzer {
	return New(nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// TestComputeFlagsNeverPanics feeds answers with every combination of
// absent and wrong-typed nested fields. None of them may panic.
func TestComputeFlagsNeverPanics(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	answers := []model.AnswerRecord{
		{},
		{BehaviorAnalytics: map[string]any{}},
		{BehaviorAnalytics: map[string]any{"wordsPerMinute": "not-a-number"}},
		{BehaviorAnalytics: map[string]any{"tabSwitches": "three"}},
		{ComprehensiveMetrics: map[string]any{"interfaceUsage": "wrong type"}},
		{ComprehensiveMetrics: map[string]any{"academicIntegrityMetrics": map[string]any{}}},
		{TimeSpent: "soon", StudentAnswer: "answer text"},
		{BehaviorAnalytics: map[string]any{"copyPasteEvents": []any{"a"}}},
	}

	for _, ans := range answers {
		flags := a.ComputeFlags(ans)
		if flags.HighWPM || flags.WordsPerMinute != nil && *flags.WordsPerMinute != 0 {
			t.Errorf("no flags expected for defective input, got %+v", flags)
		}
	}
}

// TestComputeFlagsHighWPM checks the exact threshold boundary.
func TestComputeFlagsHighWPM(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	tests := []struct {
		name string
		wpm  any
		want bool
	}{
		{"just below threshold", 119.99, false},
		{"exactly at threshold", 120.0, true},
		{"above threshold", 150.0, true},
		{"numeric string", "130", true},
		{"malformed string", "fast", false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ans := model.AnswerRecord{}
			if tt.wpm != nil {
				ans.BehaviorAnalytics = map[string]any{"wordsPerMinute": tt.wpm}
			}
			if got := a.ComputeFlags(ans).HighWPM; got != tt.want {
				t.Errorf("HighWPM for %v = %v, want %v", tt.wpm, got, tt.want)
			}
		})
	}
}

// TestComputeFlagsPasteHeuristic exercises both independent triggers of
// the derived paste signal.
func TestComputeFlagsPasteHeuristic(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	longText := "this answer is definitely longer than thirty characters"
	manyEvents := make([]any, 20)

	tests := []struct {
		name string
		ans  model.AnswerRecord
		want bool
	}{
		{
			name: "long text with two typing events despite large time",
			ans:  model.AnswerRecord{StudentAnswer: longText, TypingEvents: []any{1, 2}, TimeSpent: float64(600)},
			want: true,
		},
		{
			name: "ten chars in three seconds",
			ans:  model.AnswerRecord{StudentAnswer: "abcdefghij", TypingEvents: manyEvents, TimeSpent: float64(3)},
			want: true,
		},
		{
			name: "short answer with one event in three seconds",
			ans:  model.AnswerRecord{StudentAnswer: "abcde", TypingEvents: []any{1}, TimeSpent: float64(3)},
			want: false,
		},
		{
			name: "long text with many typing events",
			ans:  model.AnswerRecord{StudentAnswer: longText, TypingEvents: manyEvents, TimeSpent: float64(600)},
			want: false,
		},
		{
			name: "long text with no typing events at all",
			ans:  model.AnswerRecord{StudentAnswer: longText},
			want: true,
		},
		{
			name: "fast but absent time spent",
			ans:  model.AnswerRecord{StudentAnswer: "abcdefghij", TypingEvents: manyEvents},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := a.ComputeFlags(tt.ans).SuspectedPasteHeuristic; got != tt.want {
				t.Errorf("SuspectedPasteHeuristic = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestComputeFlagsPasteReported verifies both paste-report sources.
func TestComputeFlagsPasteReported(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	t.Run("explicit pasteFromExternal", func(t *testing.T) {
		t.Parallel()
		ans := model.AnswerRecord{BehaviorAnalytics: map[string]any{"pasteFromExternal": true}}
		if !a.ComputeFlags(ans).PasteReported {
			t.Error("expected PasteReported")
		}
	})

	t.Run("copy paste events counted", func(t *testing.T) {
		t.Parallel()
		ans := model.AnswerRecord{BehaviorAnalytics: map[string]any{"copyPasteEvents": float64(2)}}
		flags := a.ComputeFlags(ans)
		if !flags.PasteReported || flags.CopyPasteEvents != 2 {
			t.Errorf("expected paste reported with 2 events, got %+v", flags)
		}
	})

	t.Run("zero events do not report", func(t *testing.T) {
		t.Parallel()
		ans := model.AnswerRecord{BehaviorAnalytics: map[string]any{"copyPasteEvents": float64(0)}}
		if a.ComputeFlags(ans).PasteReported {
			t.Error("expected no paste report")
		}
	})
}

// TestComputeFlagsFocusCounters verifies the attention-metrics fallback
// for tab switches and window blur events.
func TestComputeFlagsFocusCounters(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	t.Run("behavior analytics wins", func(t *testing.T) {
		t.Parallel()
		ans := model.AnswerRecord{
			BehaviorAnalytics: map[string]any{"tabSwitches": float64(7)},
			ComprehensiveMetrics: map[string]any{
				"academicIntegrityMetrics": map[string]any{
					"attentionMetrics": map[string]any{"tabSwitches": float64(2)},
				},
			},
		}
		if got := a.ComputeFlags(ans).TabSwitches; got != 7 {
			t.Errorf("expected 7, got %d", got)
		}
	})

	t.Run("falls back to attention metrics", func(t *testing.T) {
		t.Parallel()
		ans := model.AnswerRecord{
			ComprehensiveMetrics: map[string]any{
				"academicIntegrityMetrics": map[string]any{
					"attentionMetrics": map[string]any{"windowBlurEvents": float64(4)},
				},
			},
		}
		if got := a.ComputeFlags(ans).WindowBlurEvents; got != 4 {
			t.Errorf("expected 4, got %d", got)
		}
	})

	t.Run("absent everywhere is zero", func(t *testing.T) {
		t.Parallel()
		flags := a.ComputeFlags(model.AnswerRecord{})
		if flags.TabSwitches != 0 || flags.WindowBlurEvents != 0 {
			t.Errorf("expected zero counters, got %+v", flags)
		}
	})
}

// TestComputeFlagsDevTools verifies both devtools sources.
func TestComputeFlagsDevTools(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer()

	t.Run("from behavior analytics", func(t *testing.T) {
		t.Parallel()
		ans := model.AnswerRecord{BehaviorAnalytics: map[string]any{"devToolsOpened": true}}
		if !a.ComputeFlags(ans).DevToolsOpened {
			t.Error("expected DevToolsOpened")
		}
	})

	t.Run("from interface usage metrics", func(t *testing.T) {
		t.Parallel()
		ans := model.AnswerRecord{
			ComprehensiveMetrics: map[string]any{
				"interfaceUsage": map[string]any{"devToolsOpened": true},
			},
		}
		if !a.ComputeFlags(ans).DevToolsOpened {
			t.Error("expected DevToolsOpened from interface usage")
		}
	})
}
