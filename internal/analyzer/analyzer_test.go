package analyzer

import (
	"reflect"
	"testing"

	"github.com/OrPerets/proctorscan/internal/model"
)

func session(id, studentID, email, ip, ua string, answers ...model.AnswerRecord) model.SessionEntry {
	info := model.SessionInfo{
		ID:           id,
		StudentID:    studentID,
		StudentEmail: email,
		ClientIP:     ip,
	}
	if ua != "" {
		info.Fingerprint = map[string]any{"userAgent": ua}
	}
	return model.SessionEntry{Session: info, Answers: answers}
}

func runAnalysis(t *testing.T, students []model.StudentRecord) *model.Analysis {
	t.Helper()
	analysis := model.NewAnalysis("test")
	analysis.Report = students
	if err := newTestAnalyzer().Analyze(analysis); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return analysis
}

// TestAnalyzeMergesIDVariants verifies that exam-session id variants of
// the same student collapse into one overview row.
func TestAnalyzeMergesIDVariants(t *testing.T) {
	t.Parallel()

	students := []model.StudentRecord{
		{
			StudentName: "Dana Levi",
			Sessions: []model.SessionEntry{
				session("exam-1", "123456789", "dana@example.com", "10.0.0.1", "Firefox"),
			},
		},
		{
			StudentName: "Dana Levi",
			Sessions: []model.SessionEntry{
				session("exam-2", "123456789-2", "dana@example.com", "10.0.0.1", "Firefox"),
			},
		},
	}

	analysis := runAnalysis(t, students)

	if len(analysis.Overview) != 1 {
		t.Fatalf("expected 1 overview row, got %d", len(analysis.Overview))
	}
	row := analysis.Overview[0]
	if row.StudentKey != "123456789" {
		t.Errorf("StudentKey = %q, want %q", row.StudentKey, "123456789")
	}
	if row.SessionsCount != 2 {
		t.Errorf("SessionsCount = %d, want 2", row.SessionsCount)
	}
	if row.NormalizedIDs != "123456789" {
		t.Errorf("NormalizedIDs = %q, want single merged id", row.NormalizedIDs)
	}
	if row.FlagMultipleIPs {
		t.Error("single IP must not raise the multiple-IP flag")
	}
	if row.UniqueUAs != 1 || row.FlagMultipleUAs {
		t.Errorf("one user agent expected, got UniqueUAs=%d flag=%v", row.UniqueUAs, row.FlagMultipleUAs)
	}
}

// TestAnalyzeSharedIPs verifies cross-referencing: an IP used by two
// students is reported, a single-student IP is not.
func TestAnalyzeSharedIPs(t *testing.T) {
	t.Parallel()

	students := []model.StudentRecord{
		{StudentName: "Avi", Sessions: []model.SessionEntry{
			session("e1", "111111111", "", "1.1.1.1", ""),
		}},
		{StudentName: "Ben", Sessions: []model.SessionEntry{
			session("e2", "222222222", "", "1.1.1.1", ""),
		}},
		{StudentName: "Gil", Sessions: []model.SessionEntry{
			session("e3", "333333333", "", "9.9.9.9", ""),
		}},
	}

	analysis := runAnalysis(t, students)

	if len(analysis.SharedIPs) != 1 {
		t.Fatalf("expected 1 shared IP row, got %d", len(analysis.SharedIPs))
	}
	row := analysis.SharedIPs[0]
	if row.ClientIP != "1.1.1.1" || row.NumStudents != 2 {
		t.Errorf("unexpected shared IP row: %+v", row)
	}
	if row.StudentsSample != "111111111, 222222222" {
		t.Errorf("StudentsSample = %q, want sorted pair", row.StudentsSample)
	}

	for _, ov := range analysis.Overview {
		wantShared := ov.StudentKey != "333333333"
		if ov.FlagSharedIP != wantShared {
			t.Errorf("FlagSharedIP for %s = %v, want %v", ov.StudentKey, ov.FlagSharedIP, wantShared)
		}
	}
}

// TestAnalyzeMajorityIPIssue verifies the per-session "differs from
// primary IP" issue: the first-seen IP is the primary, a later session
// from elsewhere is flagged.
func TestAnalyzeMajorityIPIssue(t *testing.T) {
	t.Parallel()

	students := []model.StudentRecord{
		{StudentName: "Noa", Sessions: []model.SessionEntry{
			session("e1", "123123123", "", "1.1.1.1", ""),
			session("e2", "123123123", "", "2.2.2.2", ""),
		}},
	}

	analysis := runAnalysis(t, students)

	if len(analysis.SessionIssues) != 1 {
		t.Fatalf("expected 1 session issue row, got %d: %+v", len(analysis.SessionIssues), analysis.SessionIssues)
	}
	row := analysis.SessionIssues[0]
	if row.ExamID != "e2" || row.ClientIP != "2.2.2.2" {
		t.Errorf("issue attributed to wrong session: %+v", row)
	}
	if row.Issues != "IP differs from student's primary IP" {
		t.Errorf("Issues = %q", row.Issues)
	}
	if !analysis.Overview[0].FlagMultipleIPs {
		t.Error("expected the multiple-IP flag on the overview row")
	}
}

// TestAnalyzeAttemptIPFallback verifies that a session without a
// session-level IP contributes its access-attempt IPs instead.
func TestAnalyzeAttemptIPFallback(t *testing.T) {
	t.Parallel()

	entry := session("e1", "555555555", "", "", "",
		model.AnswerRecord{
			QuestionIndex:     1,
			StudentAnswer:     "x",
			BehaviorAnalytics: map[string]any{"devToolsOpened": true},
		})
	entry.Session.AccessAttempts = []model.AccessAttempt{
		{ClientIP: "3.3.3.3"},
		{ClientIP: "3.3.3.3"},
		{ClientIP: "4.4.4.4"},
	}
	students := []model.StudentRecord{
		{StudentName: "Omer", Sessions: []model.SessionEntry{entry}},
	}

	analysis := runAnalysis(t, students)

	row := analysis.Overview[0]
	if row.UniqueIPs != 2 {
		t.Errorf("UniqueIPs = %d, want 2 distinct attempt IPs", row.UniqueIPs)
	}
	if row.SampleIPs != "3.3.3.3, 4.4.4.4" {
		t.Errorf("SampleIPs = %q, want first-seen order", row.SampleIPs)
	}
	if len(analysis.SessionIssues) != 1 {
		t.Fatalf("expected 1 session issue row, got %d", len(analysis.SessionIssues))
	}
	if analysis.SessionIssues[0].ClientIP != "3.3.3.3" {
		t.Errorf("issue ClientIP = %q, want first attempt IP", analysis.SessionIssues[0].ClientIP)
	}
	if analysis.SessionIssues[0].Issues != "DevTools opened in 1 answers" {
		t.Errorf("Issues = %q", analysis.SessionIssues[0].Issues)
	}
}

// TestAnalyzeAnonymousSessions verifies the null-key bucket: sessions
// with no usable identity are counted but never cross-referenced.
func TestAnalyzeAnonymousSessions(t *testing.T) {
	t.Parallel()

	students := []model.StudentRecord{
		{Sessions: []model.SessionEntry{
			session("e1", "", "", "8.8.8.8", ""),
		}},
		{Sessions: []model.SessionEntry{
			session("e2", "", "", "8.8.8.8", ""),
		}},
	}

	analysis := runAnalysis(t, students)

	if len(analysis.Overview) != 1 {
		t.Fatalf("expected one merged anonymous row, got %d", len(analysis.Overview))
	}
	if analysis.Overview[0].StudentKey != "" {
		t.Errorf("anonymous StudentKey = %q, want empty", analysis.Overview[0].StudentKey)
	}
	if analysis.Overview[0].SessionsCount != 2 {
		t.Errorf("SessionsCount = %d, want 2", analysis.Overview[0].SessionsCount)
	}
	if len(analysis.SharedIPs) != 0 {
		t.Errorf("anonymous sessions must not produce shared-IP rows, got %+v", analysis.SharedIPs)
	}
}

// TestAnalyzeEndToEnd runs the documented two-session scenario: one
// student, a reported paste in each session, a single IP throughout.
func TestAnalyzeEndToEnd(t *testing.T) {
	t.Parallel()

	pasted := model.AnswerRecord{
		QuestionIndex:     1,
		StudentAnswer:     "ok",
		TypingEvents:      []any{1, 2, 3, 4, 5},
		BehaviorAnalytics: map[string]any{"pasteFromExternal": true},
	}
	clean := model.AnswerRecord{
		QuestionIndex: 2,
		StudentAnswer: "fine",
		TypingEvents:  []any{1, 2, 3, 4, 5},
	}

	students := []model.StudentRecord{
		{StudentName: "Tomer", Sessions: []model.SessionEntry{
			session("e1", "987654321", "t@example.com", "5.5.5.5", "Chrome", pasted, clean),
			session("e2", "987654321-2", "t@example.com", "5.5.5.5", "Chrome", pasted),
		}},
	}

	analysis := runAnalysis(t, students)

	if analysis.Totals != (model.Totals{Students: 1, Sessions: 2, Answers: 3}) {
		t.Errorf("Totals = %+v", analysis.Totals)
	}

	if len(analysis.Overview) != 1 {
		t.Fatalf("expected 1 overview row, got %d", len(analysis.Overview))
	}
	row := analysis.Overview[0]
	if row.PasteReportedAnswers != 2 {
		t.Errorf("PasteReportedAnswers = %d, want 2", row.PasteReportedAnswers)
	}
	if row.FlagMultipleIPs || row.FlagSharedIP {
		t.Errorf("no IP flags expected: %+v", row)
	}

	if len(analysis.SessionIssues) != 2 {
		t.Fatalf("expected 2 session issue rows, got %d", len(analysis.SessionIssues))
	}
	for _, issue := range analysis.SessionIssues {
		if issue.Issues != "Paste reported in 1 answers" {
			t.Errorf("Issues = %q", issue.Issues)
		}
		if issue.UserAgent != "Chrome" {
			t.Errorf("UserAgent = %q", issue.UserAgent)
		}
	}

	if len(analysis.SharedIPs) != 0 {
		t.Errorf("single student must not share IPs, got %+v", analysis.SharedIPs)
	}

	if len(analysis.AnswerFlags) != 2 {
		t.Fatalf("expected 2 answer flag rows, got %d", len(analysis.AnswerFlags))
	}
	for _, af := range analysis.AnswerFlags {
		if af.Reasons != "PasteReported" {
			t.Errorf("Reasons = %q", af.Reasons)
		}
		if af.QuestionIndex != 1 {
			t.Errorf("QuestionIndex = %d, want 1", af.QuestionIndex)
		}
	}

	if got := analysis.FlaggedStudents(); got != 1 {
		t.Errorf("FlaggedStudents() = %d, want 1", got)
	}
}

// TestAnalyzeDeterministic runs the same report twice and demands
// identical row sets.
func TestAnalyzeDeterministic(t *testing.T) {
	t.Parallel()

	build := func() []model.StudentRecord {
		return []model.StudentRecord{
			{StudentName: "Avi", Sessions: []model.SessionEntry{
				session("e1", "111111111", "a@x.com", "1.1.1.1", "Firefox"),
				session("e2", "111111111", "a@x.com", "2.2.2.2", "Chrome"),
			}},
			{StudentName: "Ben", Sessions: []model.SessionEntry{
				session("e3", "222222222", "b@x.com", "1.1.1.1", "Safari"),
			}},
		}
	}

	first := runAnalysis(t, build())
	second := runAnalysis(t, build())

	if !reflect.DeepEqual(first.Overview, second.Overview) {
		t.Error("overview rows differ between identical runs")
	}
	if !reflect.DeepEqual(first.SessionIssues, second.SessionIssues) {
		t.Error("session issue rows differ between identical runs")
	}
	if !reflect.DeepEqual(first.SharedIPs, second.SharedIPs) {
		t.Error("shared IP rows differ between identical runs")
	}
	if !reflect.DeepEqual(first.AnswerFlags, second.AnswerFlags) {
		t.Error("answer flag rows differ between identical runs")
	}
}

// TestAnalyzeReportNotMutated verifies the input survives a run intact.
func TestAnalyzeReportNotMutated(t *testing.T) {
	t.Parallel()

	students := []model.StudentRecord{
		{StudentName: "Rina", Sessions: []model.SessionEntry{
			session("e1", "444444444", "", "6.6.6.6", "",
				model.AnswerRecord{QuestionIndex: 1, StudentAnswer: "text", TimeSpent: float64(30)}),
		}},
	}
	want := []model.StudentRecord{
		{StudentName: "Rina", Sessions: []model.SessionEntry{
			session("e1", "444444444", "", "6.6.6.6", "",
				model.AnswerRecord{QuestionIndex: 1, StudentAnswer: "text", TimeSpent: float64(30)}),
		}},
	}

	runAnalysis(t, students)

	if !reflect.DeepEqual(students, want) {
		t.Error("input report was mutated by analysis")
	}
}
