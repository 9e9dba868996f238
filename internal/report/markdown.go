package report

import (
	"io"
	"strconv"

	"github.com/OrPerets/proctorscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs analyses in Markdown format.
// This format is designed for sharing with exam staff and for archival
// in documentation systems.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the analysis in Markdown format.
func (w *MarkdownWriter) Write(analysis *model.Analysis) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, analysis)
	w.writeSummary(md, analysis)
	w.writeOverview(md, analysis)
	w.writeSessionIssues(md, analysis)
	w.writeSharedIPs(md, analysis)
	w.writeAnswerFlags(md, analysis)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, analysis *model.Analysis) {
	md.H1("Exam Telemetry Analysis")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + analysis.Source + "`"},
			{"Generated", analysis.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Students", strconv.Itoa(analysis.Totals.Students)},
			{"Sessions", strconv.Itoa(analysis.Totals.Sessions)},
			{"Answers", strconv.Itoa(analysis.Totals.Answers)},
			{"Status", w.statusText(analysis)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on the analysis state.
func (w *MarkdownWriter) statusText(analysis *model.Analysis) string {
	if analysis.ErrorMessage != "" {
		return "❌ Error - " + analysis.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the flag summary section with an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("Summary")
	md.PlainText("")

	flagged := analysis.FlaggedStudents()

	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Count"},
		Rows: [][]string{
			{"Flagged students", strconv.Itoa(flagged)},
			{"Sessions with issues", strconv.Itoa(len(analysis.SessionIssues))},
			{"Cross-student IPs", strconv.Itoa(len(analysis.SharedIPs))},
			{"Flagged answers", strconv.Itoa(len(analysis.AnswerFlags))},
		},
	})
	md.PlainText("")

	if len(analysis.AnswerFlags) > 0 {
		w.writeFlagChart(md, analysis)
	}

	switch {
	case len(analysis.SharedIPs) > 0:
		md.Warningf(
			"%d IP address(es) were used by multiple students. Review the cross-reference section below.",
			len(analysis.SharedIPs),
		)
	case flagged > 0:
		md.Importantf(
			"%d student(s) triggered at least one suspicion flag.",
			flagged,
		)
	default:
		md.Tip("No suspicion flags were triggered in this export.")
	}
	md.PlainText("")
}

// writeFlagChart writes a mermaid pie chart of per-student flag counts.
func (w *MarkdownWriter) writeFlagChart(md *markdown.Markdown, analysis *model.Analysis) {
	var devtools, pasteReported, suspectedPaste, suspiciousTyping int
	for _, row := range analysis.Overview {
		devtools += row.DevToolsAnswers
		pasteReported += row.PasteReportedAnswers
		suspectedPaste += row.SuspectedPasteAnswers
		suspiciousTyping += row.SuspiciousTypingAnswers
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Flagged Answer Distribution"),
		piechart.WithShowData(true),
	)

	if devtools > 0 {
		chart.LabelAndIntValue("DevTools", uint64(devtools))
	}
	if pasteReported > 0 {
		chart.LabelAndIntValue("Paste reported", uint64(pasteReported))
	}
	if suspectedPaste > 0 {
		chart.LabelAndIntValue("Suspected paste", uint64(suspectedPaste))
	}
	if suspiciousTyping > 0 {
		chart.LabelAndIntValue("Suspicious typing", uint64(suspiciousTyping))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeOverview writes the per-student overview table.
func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("Students Overview")
	md.PlainText("")

	if len(analysis.Overview) == 0 {
		md.PlainText("No students in this export.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(analysis.Overview))
	for i, row := range analysis.Overview {
		rows[i] = []string{
			row.StudentKey,
			truncateString(row.Names, 40),
			strconv.Itoa(row.SessionsCount),
			strconv.Itoa(row.AnswersCount),
			strconv.Itoa(row.UniqueIPs),
			strconv.Itoa(row.DevToolsAnswers),
			strconv.Itoa(row.PasteReportedAnswers),
			strconv.Itoa(row.SuspectedPasteAnswers),
			formatWPM(row.MaxWPM),
			overviewFlags(row),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Student", "Names", "Sessions", "Answers", "IPs", "DevTools", "Paste", "Suspected", "Max WPM", "Flags"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSessionIssues writes the per-session issue table.
func (w *MarkdownWriter) writeSessionIssues(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("Session Issues")
	md.PlainText("")

	if len(analysis.SessionIssues) == 0 {
		md.PlainText("No session issues detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(analysis.SessionIssues))
	for i, row := range analysis.SessionIssues {
		rows[i] = []string{
			row.StudentKey,
			row.ExamID,
			row.ClientIP,
			truncateString(row.UserAgent, 40),
			truncateString(row.Issues, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Student", "Exam", "Client IP", "User Agent", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSharedIPs writes the IP cross-reference table.
func (w *MarkdownWriter) writeSharedIPs(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("IPs Across Students")
	md.PlainText("")

	if len(analysis.SharedIPs) == 0 {
		md.PlainText("No IP address was used by more than one student.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(analysis.SharedIPs))
	for i, row := range analysis.SharedIPs {
		rows[i] = []string{
			row.ClientIP,
			strconv.Itoa(row.NumStudents),
			truncateString(row.StudentsSample, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Client IP", "Students", "Sample"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAnswerFlags writes the per-answer flag table.
func (w *MarkdownWriter) writeAnswerFlags(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("Answer Flags")
	md.PlainText("")

	if len(analysis.AnswerFlags) == 0 {
		md.PlainText("No answers were flagged.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(analysis.AnswerFlags))
	for i, row := range analysis.AnswerFlags {
		wpm := "-"
		if row.WordsPerMinute != nil {
			wpm = formatWPM(*row.WordsPerMinute)
		}
		rows[i] = []string{
			row.StudentKey,
			row.ExamID,
			strconv.Itoa(row.QuestionIndex),
			row.Reasons,
			wpm,
			strconv.Itoa(row.TypingEventsCount),
			strconv.Itoa(row.AnswerLength),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Student", "Exam", "Q", "Reasons", "WPM", "Typing Events", "Length"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [proctorscan](https://github.com/OrPerets/proctorscan)*")
}

// overviewFlags renders the student-level boolean flags as a short list.
func overviewFlags(row model.OverviewRow) string {
	flags := ""
	add := func(s string) {
		if flags != "" {
			flags += ", "
		}
		flags += s
	}
	if row.FlagMultipleIPs {
		add("multiple IPs")
	}
	if row.FlagSharedIP {
		add("shared IP")
	}
	if row.FlagMultipleUAs {
		add("multiple UAs")
	}
	if flags == "" {
		return "-"
	}
	return flags
}

// formatWPM renders a words-per-minute value without trailing zeros.
func formatWPM(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
