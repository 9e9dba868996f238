package model

import (
	"strings"

	"github.com/OrPerets/proctorscan/internal/field"
)

// StudentRecord is one entry of the exported report: a student name as it
// appeared in the export query, with all exam sessions matched to it.
// The name may be absent or spelled differently across records that refer
// to the same person; identity merging happens during aggregation, not here.
type StudentRecord struct {
	// StudentName is the display name the record was exported under.
	StudentName string `json:"studentName"`

	// Sessions holds the student's exam sessions with their answers.
	Sessions []SessionEntry `json:"sessions"`
}

// SessionEntry pairs one exam session with its per-question answers.
type SessionEntry struct {
	Session SessionInfo    `json:"session"`
	Answers []AnswerRecord `json:"answers"`
}

// SessionInfo describes one exam session as recorded by the platform.
// Every field is optional in the export; absent fields decode to zero
// values and never fail the run.
type SessionInfo struct {
	// ID is the session/exam identifier ("_id" in the export).
	ID string `json:"_id"`

	// Collection tags the origin collection when the export merged the
	// active and backup session stores.
	Collection string `json:"collection,omitempty"`

	// StudentID is the raw student identifier, possibly a suffixed
	// variant ("12345-2"). Canonicalized by the identity package.
	StudentID string `json:"studentId,omitempty"`

	// StudentEmail is the student's email as recorded at session start.
	StudentEmail string `json:"studentEmail,omitempty"`

	// ClientIP is the session-level client IP. When absent, access
	// attempts are the secondary IP source.
	ClientIP string `json:"clientIp,omitempty"`

	ExamTitle string `json:"examTitle,omitempty"`
	Status    string `json:"status,omitempty"`

	// StartTime, EndTime and Score are passed through to reports without
	// interpretation; timestamps are normalized at render time.
	StartTime any `json:"startTime,omitempty"`
	EndTime   any `json:"endTime,omitempty"`
	Score     any `json:"score,omitempty"`

	// Fingerprint is the client-reported browser fingerprint mapping
	// (userAgent, screenResolution, timezone). Kept generic because its
	// shape varies between proctoring client versions.
	Fingerprint map[string]any `json:"browserFingerprint,omitempty"`

	// AccessAttempts records every attempt to open the session.
	AccessAttempts []AccessAttempt `json:"accessAttempts,omitempty"`
}

// AccessAttempt is one recorded attempt to access an exam session.
// It is the secondary source of IP and fingerprint data when the
// session-level fields are absent.
type AccessAttempt struct {
	ClientIP    string         `json:"clientIp,omitempty"`
	Timestamp   any            `json:"timestamp,omitempty"`
	Success     bool           `json:"success,omitempty"`
	Fingerprint map[string]any `json:"browserFingerprint,omitempty"`
}

// AnswerRecord is one per-question answer with its behavioral signals.
// BehaviorAnalytics and ComprehensiveMetrics stay generic maps: the
// analyzer walks them with the field package so that absent or
// wrong-typed nested values degrade to defaults instead of failing.
type AnswerRecord struct {
	QuestionIndex int    `json:"questionIndex"`
	QuestionID    string `json:"questionId,omitempty"`

	// StudentAnswer is the free-text answer. Its length feeds the paste
	// heuristic.
	StudentAnswer string `json:"studentAnswer,omitempty"`

	// TimeSpent is seconds spent on the question; kept loose because the
	// export sometimes carries it as a string.
	TimeSpent any `json:"timeSpent,omitempty"`

	// TypingEvents is the recorded keystroke event list. Only its length
	// matters to the heuristics.
	TypingEvents []any `json:"typingEvents,omitempty"`

	SubmittedAt any `json:"submittedAt,omitempty"`

	BehaviorAnalytics    map[string]any `json:"behaviorAnalytics,omitempty"`
	ComprehensiveMetrics map[string]any `json:"comprehensiveMetrics,omitempty"`
}

// UserAgent returns the session fingerprint's user agent, or "".
func (s *SessionInfo) UserAgent() string {
	return field.String(s.Fingerprint, "userAgent")
}

// FingerprintSummary renders the browser fingerprint as a compact
// "userAgent | resolution | timezone" string for human-readable output.
// Returns "" when no fingerprint component is present.
func (s *SessionInfo) FingerprintSummary() string {
	parts := make([]string, 0, 3)
	if ua := field.String(s.Fingerprint, "userAgent"); ua != "" {
		parts = append(parts, ua)
	}
	if res := field.String(s.Fingerprint, "screenResolution"); res != "" {
		parts = append(parts, res)
	}
	// Both spellings occur in the wild.
	tz := field.String(s.Fingerprint, "timezone")
	if tz == "" {
		tz = field.String(s.Fingerprint, "timeZone")
	}
	if tz != "" {
		parts = append(parts, tz)
	}
	return strings.Join(parts, " | ")
}

// TypingEventCount returns the number of recorded typing events,
// falling back to comprehensiveMetrics.keystrokeEvents when the
// top-level list is absent.
func (a *AnswerRecord) TypingEventCount() int {
	if len(a.TypingEvents) > 0 {
		return len(a.TypingEvents)
	}
	return len(field.Slice(a.ComprehensiveMetrics, "keystrokeEvents"))
}
