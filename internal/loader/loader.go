// Package loader decodes exam telemetry exports into the input model.
//
// The export format is JSON, either the full envelope written by the
// platform's export job ({generatedAt, totals, report: [...]}) or a bare
// array of student records. Decoding is defensive: any missing or
// wrong-typed field degrades to a zero value. The one fatal condition is
// a top level that is not a sequence of student-shaped objects, because
// the entire aggregation is undefined without it.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OrPerets/proctorscan/internal/field"
	"github.com/OrPerets/proctorscan/internal/model"
)

// ErrInvalidReport is returned when the top-level input is not a
// sequence of student-shaped objects. Unlike field-level defects, this
// is fatal: no partial results are produced from a malformed export.
var ErrInvalidReport = errors.New("invalid report: expected an array of student records")

// Export is a decoded telemetry export.
type Export struct {
	// GeneratedAt is the export's own timestamp, passed through raw;
	// nil when the input was a bare array.
	GeneratedAt any

	// Students is the decoded report, in export order.
	Students []model.StudentRecord
}

// Load reads and decodes an export file. The path "-" reads stdin.
func Load(path string) (*Export, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to open export: %w", err)
		}
		defer f.Close() //nolint:errcheck // Read-only file
		r = f
	}

	export, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return export, nil
}

// Decode parses an export from r. It accepts both the export envelope
// and a bare student array.
func Decode(r io.Reader) (*Export, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	export := &Export{}
	reportVal := root
	if envelope := field.Map(root); envelope != nil {
		export.GeneratedAt = envelope["generatedAt"]
		reportVal = envelope["report"]
	}

	records, ok := reportVal.([]any)
	if !ok {
		return nil, ErrInvalidReport
	}

	export.Students = make([]model.StudentRecord, 0, len(records))
	for i, rec := range records {
		m := field.Map(rec)
		if m == nil {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrInvalidReport, i)
		}
		export.Students = append(export.Students, decodeStudent(m))
	}
	return export, nil
}

// decodeStudent builds a StudentRecord, skipping malformed session
// entries rather than failing the run.
func decodeStudent(m map[string]any) model.StudentRecord {
	student := model.StudentRecord{
		StudentName: field.String(m, "studentName"),
	}

	for _, entry := range field.Slice(m, "sessions") {
		em := field.Map(entry)
		if em == nil {
			continue
		}
		session := model.SessionEntry{
			Session: decodeSession(field.Map(em["session"])),
		}
		for _, ans := range field.Slice(em, "answers") {
			am := field.Map(ans)
			if am == nil {
				continue
			}
			session.Answers = append(session.Answers, decodeAnswer(am))
		}
		student.Sessions = append(student.Sessions, session)
	}
	return student
}

func decodeSession(m map[string]any) model.SessionInfo {
	info := model.SessionInfo{
		ID:           field.Stringify(m["_id"]),
		Collection:   field.String(m, "collection"),
		StudentID:    field.Stringify(m["studentId"]),
		StudentEmail: field.String(m, "studentEmail"),
		ClientIP:     field.String(m, "clientIp"),
		ExamTitle:    field.String(m, "examTitle"),
		Status:       field.String(m, "status"),
		StartTime:    m["startTime"],
		EndTime:      m["endTime"],
		Score:        m["score"],
		Fingerprint:  field.Map(m["browserFingerprint"]),
	}

	for _, att := range field.Slice(m, "accessAttempts") {
		am := field.Map(att)
		if am == nil {
			continue
		}
		info.AccessAttempts = append(info.AccessAttempts, model.AccessAttempt{
			ClientIP:    field.String(am, "clientIp"),
			Timestamp:   am["timestamp"],
			Success:     field.Bool(am, "success"),
			Fingerprint: field.Map(am["browserFingerprint"]),
		})
	}
	return info
}

func decodeAnswer(m map[string]any) model.AnswerRecord {
	return model.AnswerRecord{
		QuestionIndex:        field.Int(m, "questionIndex"),
		QuestionID:           field.Stringify(m["questionId"]),
		StudentAnswer:        field.String(m, "studentAnswer"),
		TimeSpent:            m["timeSpent"],
		TypingEvents:         field.Slice(m, "typingEvents"),
		SubmittedAt:          m["submittedAt"],
		BehaviorAnalytics:    field.Map(m["behaviorAnalytics"]),
		ComprehensiveMetrics: field.Map(m["comprehensiveMetrics"]),
	}
}
