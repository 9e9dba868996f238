package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OrPerets/proctorscan/internal/model"
)

// Synthesize combines aggregate state, per-session tallies, and the IP
// cross-reference into the overview, session-issue, and answer-flag row
// sets. Students are emitted in first-seen order; identity sets are
// joined sorted for stable output.
func (a *Analyzer) Synthesize(analysis *model.Analysis) {
	analysis.Overview = make([]model.OverviewRow, 0, len(analysis.Aggregates.Keys))
	analysis.SessionIssues = make([]model.SessionIssueRow, 0)
	analysis.AnswerFlags = make([]model.AnswerFlagRow, 0)

	for _, key := range analysis.Aggregates.Keys {
		agg := analysis.Aggregates.ByKey[key]

		names := joinSet(agg.Names)
		normIDs := joinSet(agg.NormalizedIDs)
		emails := joinSet(agg.Emails)

		multipleIPs := len(agg.IPs) > 1
		multipleUAs := len(agg.UserAgents) > 1
		sharedIP := false
		for _, ip := range agg.IPs {
			if analysis.Index.Shared(ip) {
				sharedIP = true
				break
			}
		}

		analysis.Overview = append(analysis.Overview, model.OverviewRow{
			StudentKey:              agg.Key,
			Names:                   names,
			NormalizedIDs:           normIDs,
			Emails:                  emails,
			SessionsCount:           len(agg.Sessions),
			AnswersCount:            agg.AnswersCount,
			UniqueIPs:               len(agg.IPs),
			SampleIPs:               sampleJoin(agg.IPs, a.sampleIPs),
			UniqueUAs:               len(agg.UserAgents),
			FlagMultipleIPs:         multipleIPs,
			FlagSharedIP:            sharedIP,
			FlagMultipleUAs:         multipleUAs,
			DevToolsAnswers:         agg.DevToolsAnswers,
			PasteReportedAnswers:    agg.PasteReportedAnswers,
			SuspectedPasteAnswers:   agg.SuspectedPasteAnswers,
			SuspiciousTypingAnswers: agg.SuspiciousTypingAnswers,
			TabSwitchesSum:          agg.TabSwitchesSum,
			WindowBlurSum:           agg.WindowBlurSum,
			MaxWPM:                  agg.MaxWPM,
		})

		majorityIP := agg.MajorityIP()

		for _, rollup := range agg.Sessions {
			session := &rollup.Entry.Session
			ip := sessionIssueIP(session)

			issues := sessionIssues(rollup.Tally, issueContext{
				ip:          ip,
				majorityIP:  majorityIP,
				multipleIPs: multipleIPs,
				multipleUAs: multipleUAs,
				sharedIP:    sharedIP && ip != "" && analysis.Index.Shared(ip),
			})

			if len(issues) > 0 {
				analysis.SessionIssues = append(analysis.SessionIssues, model.SessionIssueRow{
					StudentKey:    agg.Key,
					Names:         names,
					NormalizedIDs: normIDs,
					Emails:        emails,
					ExamID:        session.ID,
					ClientIP:      ip,
					UserAgent:     session.UserAgent(),
					Issues:        strings.Join(issues, "; "),
				})
			}

			for i, flags := range rollup.Flags {
				if !flags.Flagged() {
					continue
				}
				ans := &rollup.Entry.Answers[i]
				analysis.AnswerFlags = append(analysis.AnswerFlags, model.AnswerFlagRow{
					StudentKey:        agg.Key,
					Names:             names,
					NormalizedIDs:     normIDs,
					ExamID:            session.ID,
					QuestionIndex:     ans.QuestionIndex,
					Reasons:           strings.Join(flags.Reasons(), ","),
					WordsPerMinute:    flags.WordsPerMinute,
					CopyPasteEvents:   flags.CopyPasteEvents,
					TypingEventsCount: flags.TypingEventsCount,
					AnswerLength:      flags.AnswerLength,
					TimeSpent:         ans.TimeSpent,
					SubmittedAt:       model.NormalizeTimestamp(ans.SubmittedAt),
				})
			}
		}
	}
}

// issueContext carries the student-level flags needed to evaluate one
// session's issue conditions.
type issueContext struct {
	ip          string
	majorityIP  string
	multipleIPs bool
	multipleUAs bool
	sharedIP    bool
}

// sessionIssues evaluates every issue condition independently and
// returns the matching issue texts in stable order.
func sessionIssues(tally model.SessionTally, ctx issueContext) []string {
	var issues []string

	if ctx.multipleIPs && ctx.ip != "" && ctx.majorityIP != "" && ctx.ip != ctx.majorityIP {
		issues = append(issues, "IP differs from student's primary IP")
	}
	if ctx.sharedIP {
		issues = append(issues, "IP shared across multiple students")
	}
	if ctx.multipleUAs {
		issues = append(issues, "Multiple different user agents across sessions")
	}
	if tally.DevTools > 0 {
		issues = append(issues, fmt.Sprintf("DevTools opened in %d answers", tally.DevTools))
	}
	if tally.PasteReported > 0 {
		issues = append(issues, fmt.Sprintf("Paste reported in %d answers", tally.PasteReported))
	}
	if tally.PasteHeuristic > 0 {
		issues = append(issues, fmt.Sprintf("Suspected paste (heuristic) in %d answers", tally.PasteHeuristic))
	}
	if tally.SuspiciousTyping > 0 {
		issues = append(issues, fmt.Sprintf("Suspicious typing speed in %d answers", tally.SuspiciousTyping))
	}
	if tally.HighWPM > 0 {
		issues = append(issues, fmt.Sprintf("Unusually high WPM in %d answers", tally.HighWPM))
	}
	return issues
}

// joinSet renders an identity set sorted and comma-joined.
func joinSet(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}

// sampleJoin joins the first limit elements of an ordered list.
func sampleJoin(values []string, limit int) string {
	if len(values) > limit {
		values = values[:limit]
	}
	return strings.Join(values, ", ")
}
