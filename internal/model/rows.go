package model

import "time"

// OverviewRow is one per-student row of the StudentsOverview output.
// Identity sets are joined sorted; sample IPs keep first-seen order.
type OverviewRow struct {
	StudentKey              string   `json:"studentKey"`
	Names                   string   `json:"names"`
	NormalizedIDs           string   `json:"normalizedIds"`
	Emails                  string   `json:"emails"`
	SessionsCount           int      `json:"sessionsCount"`
	AnswersCount            int      `json:"answersCount"`
	UniqueIPs               int      `json:"uniqueIPs"`
	SampleIPs               string   `json:"sampleIPs"`
	UniqueUAs               int      `json:"uniqueUAs"`
	FlagMultipleIPs         bool     `json:"flagMultipleIPs"`
	FlagSharedIP            bool     `json:"flagSharedIP"`
	FlagMultipleUAs         bool     `json:"flagMultipleUAs"`
	DevToolsAnswers         int      `json:"devToolsAnswers"`
	PasteReportedAnswers    int      `json:"pasteReportedAnswers"`
	SuspectedPasteAnswers   int      `json:"suspectedPasteAnswers"`
	SuspiciousTypingAnswers int      `json:"suspiciousTypingAnswers"`
	TabSwitchesSum          int      `json:"tabSwitchesSum"`
	WindowBlurSum           int      `json:"windowBlurSum"`
	MaxWPM                  float64  `json:"maxWPM"`
}

// SessionIssueRow is one per-session row of the SessionIssues output.
// A row is emitted only when at least one issue condition held; Issues
// is the semicolon-joined issue text.
type SessionIssueRow struct {
	StudentKey    string `json:"studentKey"`
	Names         string `json:"names"`
	NormalizedIDs string `json:"normalizedIds"`
	Emails        string `json:"emails"`
	ExamID        string `json:"examId"`
	ClientIP      string `json:"clientIp"`
	UserAgent     string `json:"userAgent"`
	Issues        string `json:"issues"`
}

// SharedIPRow is one row of the IPsAcrossStudents output: an IP used by
// more than one distinct canonical student key.
type SharedIPRow struct {
	ClientIP       string `json:"clientIp"`
	NumStudents    int    `json:"numStudents"`
	StudentsSample string `json:"studentsSample"`
}

// AnswerFlagRow is one row of the AnswersFlags output, emitted only for
// answers with at least one triggered flag. Raw metrics ride along with
// the reason labels.
type AnswerFlagRow struct {
	StudentKey        string   `json:"studentKey"`
	Names             string   `json:"names"`
	NormalizedIDs     string   `json:"normalizedIds"`
	ExamID            string   `json:"examId"`
	QuestionIndex     int      `json:"questionIndex"`
	Reasons           string   `json:"reasons"`
	WordsPerMinute    *float64 `json:"wordsPerMinute"`
	CopyPasteEvents   int      `json:"copyPasteEvents"`
	TypingEventsCount int      `json:"typingEventsCount"`
	AnswerLength      int      `json:"answerLength"`
	TimeSpent         any      `json:"timeSpent"`
	SubmittedAt       any      `json:"submittedAt"`
}

// Totals counts the walked input, mirroring the export's own summary.
type Totals struct {
	Students int `json:"students"`
	Sessions int `json:"sessions"`
	Answers  int `json:"answers"`
}

// Analysis is the full result of one analysis run.
//
// Design decision: We use a single struct carrying input, intermediate
// aggregation state, and output rows rather than threading separate
// values through the pipeline. Pipeline steps accumulate into it the same
// way scan steps accumulate into a scan report, and the JSON-excluded
// fields keep serialized output limited to the four row sets plus
// metadata.
type Analysis struct {
	// Source identifies the analyzed input (file path or "-" for stdin).
	Source string `json:"source,omitempty"`

	// GeneratedAt is the export's own timestamp when present, otherwise
	// the time the analysis ran.
	GeneratedAt time.Time `json:"generatedAt"`

	Totals Totals `json:"totals"`

	// Report is the decoded input, immutable to the analyzer.
	Report []StudentRecord `json:"-"`

	// Aggregation state; rebuilt each run, excluded from serialization.
	Aggregates *Aggregates `json:"-"`
	Index      IPIndex     `json:"-"`

	// The four output row sets.
	Overview      []OverviewRow     `json:"studentsOverview"`
	SessionIssues []SessionIssueRow `json:"sessionIssues"`
	SharedIPs     []SharedIPRow     `json:"ipsAcrossStudents"`
	AnswerFlags   []AnswerFlagRow   `json:"answersFlags"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"-"`

	// Error records a non-fatal defect encountered during the run.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewAnalysis creates an empty analysis for the given source.
func NewAnalysis(source string) *Analysis {
	return &Analysis{
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Index:       make(IPIndex),
	}
}

// FlaggedStudents counts overview rows with at least one student-level
// flag set. Used for summary output and run history.
func (a *Analysis) FlaggedStudents() int {
	n := 0
	for _, row := range a.Overview {
		if row.FlagMultipleIPs || row.FlagSharedIP || row.FlagMultipleUAs ||
			row.DevToolsAnswers > 0 || row.PasteReportedAnswers > 0 ||
			row.SuspectedPasteAnswers > 0 || row.SuspiciousTypingAnswers > 0 {
			n++
		}
	}
	return n
}
