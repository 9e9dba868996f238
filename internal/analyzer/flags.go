package analyzer

import (
	"unicode/utf8"

	"github.com/OrPerets/proctorscan/internal/field"
	"github.com/OrPerets/proctorscan/internal/model"
)

// ComputeFlags derives the suspicion flags for one answer.
//
// It is a pure function over the answer record: every input is optional,
// absent or wrong-typed values degrade to false/zero/absent, and no
// combination of missing nested fields can make it fail. Numeric parsing
// is parse-or-default; a malformed words-per-minute value means the flag
// simply does not trigger.
func (a *Analyzer) ComputeFlags(ans model.AnswerRecord) model.AnswerFlags {
	ba := ans.BehaviorAnalytics
	cm := ans.ComprehensiveMetrics

	flags := model.AnswerFlags{
		SuspiciousTypingSpeed: field.Bool(ba, "suspiciousTypingSpeed"),
		CopyPasteEvents:       field.Int(ba, "copyPasteEvents"),
		TypingEventsCount:     ans.TypingEventCount(),
		AnswerLength:          utf8.RuneCountInString(ans.StudentAnswer),
	}

	flags.PasteReported = field.Bool(ba, "pasteFromExternal") || flags.CopyPasteEvents > 0
	flags.DevToolsOpened = field.Bool(ba, "devToolsOpened") ||
		field.Bool(cm, "interfaceUsage", "devToolsOpened")

	// Focus-loss counters: the behavior analytics value wins when it
	// recorded anything; the attention metrics are the fallback source.
	flags.TabSwitches = field.Int(ba, "tabSwitches")
	if flags.TabSwitches == 0 {
		flags.TabSwitches = field.Int(cm, "academicIntegrityMetrics", "attentionMetrics", "tabSwitches")
	}
	flags.WindowBlurEvents = field.Int(ba, "windowBlurEvents")
	if flags.WindowBlurEvents == 0 {
		flags.WindowBlurEvents = field.Int(cm, "academicIntegrityMetrics", "attentionMetrics", "windowBlurEvents")
	}

	if wpm, ok := field.Float(ba, "wordsPerMinute"); ok {
		v := wpm
		flags.WordsPerMinute = &v
		flags.HighWPM = wpm >= a.thresholds.HighWPM
	}
	if aki, ok := field.Float(ba, "averageKeyInterval"); ok {
		v := aki
		flags.AverageKeyInterval = &v
	}

	// Heuristic paste detection: two independent triggers, each
	// approximating a distinct paste signature.
	if flags.AnswerLength >= a.thresholds.PasteMinAnswerLength &&
		flags.TypingEventsCount <= a.thresholds.PasteMaxTypingEvents {
		flags.SuspectedPasteHeuristic = true
	}
	if spent, ok := field.ParseFloat(ans.TimeSpent); ok &&
		spent <= a.thresholds.FastAnswerMaxSeconds &&
		flags.AnswerLength >= a.thresholds.FastAnswerMinLength {
		flags.SuspectedPasteHeuristic = true
	}

	return flags
}
