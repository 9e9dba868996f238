package analyzer

import (
	"github.com/OrPerets/proctorscan/internal/identity"
	"github.com/OrPerets/proctorscan/internal/model"
)

// Aggregate walks the report once, folding every session and answer into
// per-student aggregates and building the IP reverse index.
//
// The canonical key for a session is chosen in priority order: the
// normalized student id, the record's student name, the session's email.
// Sessions with none of the three land in a shared null-key bucket; they
// are still counted but excluded from IP cross-referencing, since an
// anonymous bucket would produce false sharing matches.
func (a *Analyzer) Aggregate(students []model.StudentRecord) (*model.Aggregates, model.IPIndex) {
	aggs := model.NewAggregates()
	index := make(model.IPIndex)

	for si := range students {
		student := &students[si]
		for ei := range student.Sessions {
			entry := &student.Sessions[ei]
			session := &entry.Session

			normID, hasID := identity.Normalize(session.StudentID)

			var key string
			var hasKey bool
			switch {
			case hasID:
				key, hasKey = normID, true
			case student.StudentName != "":
				key, hasKey = student.StudentName, true
			case session.StudentEmail != "":
				key, hasKey = session.StudentEmail, true
			}

			agg := aggs.FetchOrCreate(key, hasKey)

			if student.StudentName != "" {
				agg.Names[student.StudentName] = struct{}{}
			}
			if hasID {
				agg.NormalizedIDs[normID] = struct{}{}
			}
			if session.StudentEmail != "" {
				agg.Emails[session.StudentEmail] = struct{}{}
			}

			// Session-level IP first, then access-attempt IPs, first-seen
			// order preserved across the student's sessions.
			for _, ip := range sessionIPCandidates(session) {
				agg.AddIP(ip)
				if hasKey {
					index.Add(ip, key)
				}
			}

			if ua := session.UserAgent(); ua != "" {
				agg.UserAgents[ua] = struct{}{}
			}

			rollup := model.SessionRollup{Entry: entry}
			for _, ans := range entry.Answers {
				flags := a.ComputeFlags(ans)
				rollup.Flags = append(rollup.Flags, flags)

				agg.AnswersCount++
				if flags.DevToolsOpened {
					agg.DevToolsAnswers++
					rollup.Tally.DevTools++
				}
				if flags.PasteReported {
					agg.PasteReportedAnswers++
					rollup.Tally.PasteReported++
				}
				if flags.SuspectedPasteHeuristic {
					agg.SuspectedPasteAnswers++
					rollup.Tally.PasteHeuristic++
				}
				if flags.SuspiciousTypingSpeed {
					agg.SuspiciousTypingAnswers++
					rollup.Tally.SuspiciousTyping++
				}
				if flags.HighWPM {
					rollup.Tally.HighWPM++
				}
				agg.TabSwitchesSum += flags.TabSwitches
				agg.WindowBlurSum += flags.WindowBlurEvents
				if flags.WordsPerMinute != nil && *flags.WordsPerMinute > agg.MaxWPM {
					agg.MaxWPM = *flags.WordsPerMinute
				}
			}
			agg.Sessions = append(agg.Sessions, rollup)
		}
	}

	a.logger.Debug("report aggregated",
		"students", len(aggs.Keys),
		"indexed_ips", len(index),
	)
	return aggs, index
}

// sessionIPCandidates returns the session's IPs in priority order:
// the session-level client IP, then distinct access-attempt IPs.
func sessionIPCandidates(session *model.SessionInfo) []string {
	candidates := make([]string, 0, 1+len(session.AccessAttempts))
	seen := make(map[string]struct{})

	add := func(ip string) {
		if ip == "" {
			return
		}
		if _, ok := seen[ip]; ok {
			return
		}
		seen[ip] = struct{}{}
		candidates = append(candidates, ip)
	}

	add(session.ClientIP)
	for i := range session.AccessAttempts {
		add(session.AccessAttempts[i].ClientIP)
	}
	return candidates
}

// sessionIssueIP returns the IP shown on a session issue row: the
// session-level IP when present, else the first access-attempt IP.
func sessionIssueIP(session *model.SessionInfo) string {
	if session.ClientIP != "" {
		return session.ClientIP
	}
	for i := range session.AccessAttempts {
		if ip := session.AccessAttempts[i].ClientIP; ip != "" {
			return ip
		}
	}
	return ""
}
