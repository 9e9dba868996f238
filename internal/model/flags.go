package model

// AnswerFlags is the classification layer computed over one answer.
// The boolean flags mark suspicion signals; the raw counters are carried
// alongside so that reports show the evidence, never just the verdict.
type AnswerFlags struct {
	// SuspiciousTypingSpeed is the client's own typing-speed verdict.
	SuspiciousTypingSpeed bool `json:"suspiciousTypingSpeed"`

	// PasteReported is true when the client reported an external paste
	// or counted at least one copy/paste event.
	PasteReported bool `json:"pasteReported"`

	// SuspectedPasteHeuristic is the derived paste signal: long text with
	// almost no keystrokes, or text appearing faster than typable.
	SuspectedPasteHeuristic bool `json:"suspectedPasteHeuristic"`

	// DevToolsOpened is true when either the behavior analytics or the
	// interface-usage metrics recorded an open devtools panel.
	DevToolsOpened bool `json:"devToolsOpened"`

	// HighWPM is true when the reported words-per-minute meets the
	// configured threshold (default 120, beyond sustained human typing).
	HighWPM bool `json:"highWPM"`

	// TabSwitches and WindowBlurEvents count focus-loss events.
	TabSwitches      int `json:"tabSwitches"`
	WindowBlurEvents int `json:"windowBlurEvents"`

	// WordsPerMinute and AverageKeyInterval are nil when unreported or
	// unparseable.
	WordsPerMinute     *float64 `json:"wordsPerMinute"`
	AverageKeyInterval *float64 `json:"averageKeyInterval"`

	CopyPasteEvents   int `json:"copyPasteEvents"`
	TypingEventsCount int `json:"typingEventsCount"`
	AnswerLength      int `json:"answerLength"`
}

// Flagged reports whether at least one suspicion flag is set.
// Answers without any flag are omitted from the answer-level report.
func (f AnswerFlags) Flagged() bool {
	return f.DevToolsOpened ||
		f.PasteReported ||
		f.SuspectedPasteHeuristic ||
		f.SuspiciousTypingSpeed ||
		f.HighWPM
}

// Reasons returns the labels of all triggered flags in stable order.
func (f AnswerFlags) Reasons() []string {
	var reasons []string
	if f.DevToolsOpened {
		reasons = append(reasons, "DevTools")
	}
	if f.PasteReported {
		reasons = append(reasons, "PasteReported")
	}
	if f.SuspectedPasteHeuristic {
		reasons = append(reasons, "PasteHeuristic")
	}
	if f.SuspiciousTypingSpeed {
		reasons = append(reasons, "SuspiciousTyping")
	}
	if f.HighWPM {
		reasons = append(reasons, "HighWPM")
	}
	return reasons
}
