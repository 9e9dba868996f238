package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/OrPerets/proctorscan/internal/model"
)

// TextWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// showEmpty controls whether sections with no rows are shown.
	showEmpty bool

	// verbose enables per-answer detail in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-answer detail.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the analysis in human-readable format.
func (w *TextWriter) Write(analysis *model.Analysis) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, analysis)
	w.writeFlaggedStudents(&sb, analysis)
	w.writeSessionIssues(&sb, analysis)
	w.writeSharedIPs(&sb, analysis)
	if w.verbose {
		w.writeAnswerFlags(&sb, analysis)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the header with run information and totals.
func (w *TextWriter) writeHeader(sb *strings.Builder, analysis *model.Analysis) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    EXAM TELEMETRY ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Source:     %s\n", analysis.Source))
	sb.WriteString(fmt.Sprintf("Generated:  %s\n", analysis.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Students:   %d\n", analysis.Totals.Students))
	sb.WriteString(fmt.Sprintf("Sessions:   %d\n", analysis.Totals.Sessions))
	sb.WriteString(fmt.Sprintf("Answers:    %d\n", analysis.Totals.Answers))

	if analysis.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:     ERROR - %s\n", analysis.ErrorMessage))
	} else {
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeFlaggedStudents writes students with at least one flag.
func (w *TextWriter) writeFlaggedStudents(sb *strings.Builder, analysis *model.Analysis) {
	flagged := make([]model.OverviewRow, 0, len(analysis.Overview))
	for _, row := range analysis.Overview {
		if row.FlagMultipleIPs || row.FlagSharedIP || row.FlagMultipleUAs ||
			row.DevToolsAnswers > 0 || row.PasteReportedAnswers > 0 ||
			row.SuspectedPasteAnswers > 0 || row.SuspiciousTypingAnswers > 0 {
			flagged = append(flagged, row)
		}
	}

	if len(flagged) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "FLAGGED STUDENTS")

	if len(flagged) == 0 {
		sb.WriteString("  No students flagged\n\n")
		return
	}

	for _, row := range flagged {
		sb.WriteString(fmt.Sprintf("  * %s", row.StudentKey))
		if row.Names != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", row.Names))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("    Sessions: %d  Answers: %d  Unique IPs: %d  Unique UAs: %d\n",
			row.SessionsCount, row.AnswersCount, row.UniqueIPs, row.UniqueUAs))

		if counters := flagCounters(row); counters != "" {
			sb.WriteString(fmt.Sprintf("    Flags: %s\n", counters))
		}
	}
	sb.WriteString("\n")
}

// flagCounters renders the non-zero flag counters of an overview row.
func flagCounters(row model.OverviewRow) string {
	parts := make([]string, 0, 5)
	if row.DevToolsAnswers > 0 {
		parts = append(parts, fmt.Sprintf("devtools=%d", row.DevToolsAnswers))
	}
	if row.PasteReportedAnswers > 0 {
		parts = append(parts, fmt.Sprintf("paste=%d", row.PasteReportedAnswers))
	}
	if row.SuspectedPasteAnswers > 0 {
		parts = append(parts, fmt.Sprintf("suspected-paste=%d", row.SuspectedPasteAnswers))
	}
	if row.SuspiciousTypingAnswers > 0 {
		parts = append(parts, fmt.Sprintf("suspicious-typing=%d", row.SuspiciousTypingAnswers))
	}
	if row.MaxWPM > 0 {
		parts = append(parts, fmt.Sprintf("max-wpm=%s", formatWPM(row.MaxWPM)))
	}
	return strings.Join(parts, " ")
}

// writeSessionIssues writes the per-session issue list.
func (w *TextWriter) writeSessionIssues(sb *strings.Builder, analysis *model.Analysis) {
	if len(analysis.SessionIssues) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "SESSION ISSUES")

	if len(analysis.SessionIssues) == 0 {
		sb.WriteString("  No session issues\n\n")
		return
	}

	for _, row := range analysis.SessionIssues {
		sb.WriteString(fmt.Sprintf("  * %s  exam=%s", row.StudentKey, row.ExamID))
		if row.ClientIP != "" {
			sb.WriteString(fmt.Sprintf("  ip=%s", row.ClientIP))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("    %s\n", row.Issues))
	}
	sb.WriteString("\n")
}

// writeSharedIPs writes the IP cross-reference section.
func (w *TextWriter) writeSharedIPs(sb *strings.Builder, analysis *model.Analysis) {
	if len(analysis.SharedIPs) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "IPS ACROSS STUDENTS")

	if len(analysis.SharedIPs) == 0 {
		sb.WriteString("  No shared IPs\n\n")
		return
	}

	for _, row := range analysis.SharedIPs {
		sb.WriteString(fmt.Sprintf("  [!] %s used by %d students: %s\n",
			row.ClientIP, row.NumStudents, row.StudentsSample))
	}
	sb.WriteString("\n")
}

// writeAnswerFlags writes the per-answer detail section.
func (w *TextWriter) writeAnswerFlags(sb *strings.Builder, analysis *model.Analysis) {
	if len(analysis.AnswerFlags) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeader(sb, "ANSWER FLAGS")

	if len(analysis.AnswerFlags) == 0 {
		sb.WriteString("  No flagged answers\n\n")
		return
	}

	for _, row := range analysis.AnswerFlags {
		sb.WriteString(fmt.Sprintf("  * %s  exam=%s  question=%d\n",
			row.StudentKey, row.ExamID, row.QuestionIndex))
		sb.WriteString(fmt.Sprintf("    Reasons: %s\n", row.Reasons))
		if row.WordsPerMinute != nil {
			sb.WriteString(fmt.Sprintf("    WPM: %s\n", formatWPM(*row.WordsPerMinute)))
		}
	}
	sb.WriteString("\n")
}

// writeSectionHeader writes a dashed section header.
func (w *TextWriter) writeSectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by proctorscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
