package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/OrPerets/proctorscan/internal/model"
)

// RunDB provides SQLite-based storage for analysis run history.
// It manages connection pooling and provides methods for saving and
// retrieving past runs.
//
// Design decision: We use a single database file for all runs rather
// than one file per export. Cross-run queries (did this student get
// flagged last week too?) need all runs in one place.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "proctorscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections buy nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one record per completed analysis
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		generated_at DATETIME,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		students INTEGER DEFAULT 0,
		sessions INTEGER DEFAULT 0,
		answers INTEGER DEFAULT 0,
		flagged_students INTEGER DEFAULT 0,
		shared_ips INTEGER DEFAULT 0,
		analysis_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Per-student flag summaries for cross-run lookups
	CREATE TABLE IF NOT EXISTS student_flags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		student_key TEXT NOT NULL,
		names TEXT,
		devtools_answers INTEGER DEFAULT 0,
		paste_reported_answers INTEGER DEFAULT 0,
		suspected_paste_answers INTEGER DEFAULT 0,
		suspicious_typing_answers INTEGER DEFAULT 0,
		multiple_ips INTEGER DEFAULT 0,
		shared_ip INTEGER DEFAULT 0,
		multiple_uas INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_flags_run ON student_flags(run_id);
	CREATE INDEX IF NOT EXISTS idx_flags_student ON student_flags(student_key);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists a completed analysis: the run summary, the full
// serialized output, and one student_flags row per flagged student.
func (rdb *RunDB) SaveRun(ctx context.Context, analysis *model.Analysis) error {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (source, generated_at, students, sessions, answers, flagged_students, shared_ips, analysis_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		analysis.Source,
		analysis.GeneratedAt.UTC().Format(time.RFC3339),
		analysis.Totals.Students,
		analysis.Totals.Sessions,
		analysis.Totals.Answers,
		analysis.FlaggedStudents(),
		len(analysis.SharedIPs),
		string(analysisJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}

	for _, row := range analysis.Overview {
		if row.DevToolsAnswers == 0 && row.PasteReportedAnswers == 0 &&
			row.SuspectedPasteAnswers == 0 && row.SuspiciousTypingAnswers == 0 &&
			!row.FlagMultipleIPs && !row.FlagSharedIP && !row.FlagMultipleUAs {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
		INSERT INTO student_flags (run_id, student_key, names, devtools_answers,
			paste_reported_answers, suspected_paste_answers, suspicious_typing_answers,
			multiple_ips, shared_ip, multiple_uas)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			row.StudentKey,
			row.Names,
			row.DevToolsAnswers,
			row.PasteReportedAnswers,
			row.SuspectedPasteAnswers,
			row.SuspiciousTypingAnswers,
			boolToInt(row.FlagMultipleIPs),
			boolToInt(row.FlagSharedIP),
			boolToInt(row.FlagMultipleUAs),
		); err != nil {
			return fmt.Errorf("failed to save student flags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading the full analysis.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Source is the analyzed input path.
	Source string

	// Timestamp is when the run was saved.
	Timestamp time.Time

	// Totals are the input counts of the run.
	Totals model.Totals

	// FlaggedStudents is the number of students with at least one flag.
	FlaggedStudents int

	// SharedIPs is the number of cross-student IPs found.
	SharedIPs int
}

// ListRuns retrieves run metadata, most recent first.
// A limit of 0 or less returns all runs.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, source, timestamp, students, sessions, answers, flagged_students, shared_ips
	FROM runs
	ORDER BY timestamp DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.Source,
			&timestamp,
			&meta.Totals.Students,
			&meta.Totals.Sessions,
			&meta.Totals.Answers,
			&meta.FlaggedStudents,
			&meta.SharedIPs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRunByID retrieves a stored analysis by its database ID.
// Returns nil without error when the run does not exist.
func (rdb *RunDB) GetRunByID(ctx context.Context, id int64) (*model.Analysis, error) {
	var analysisJSON string
	err := rdb.db.QueryRowContext(ctx,
		`SELECT analysis_json FROM runs WHERE id = ?`, id).Scan(&analysisJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var analysis model.Analysis
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	return &analysis, nil
}

// GetLatestRun retrieves the most recent stored analysis for a source.
// Returns nil without error when the source has no runs.
func (rdb *RunDB) GetLatestRun(ctx context.Context, source string) (*model.Analysis, error) {
	var analysisJSON string
	err := rdb.db.QueryRowContext(ctx, `
	SELECT analysis_json FROM runs
	WHERE source = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`, source).Scan(&analysisJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	var analysis model.Analysis
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}
	return &analysis, nil
}

// StudentFlagHistory is one historical flag summary for a student.
type StudentFlagHistory struct {
	// RunID is the run the summary belongs to.
	RunID int64

	// Timestamp is when that run was saved.
	Timestamp time.Time

	// Source is the input the run analyzed.
	Source string

	// Names is the joined name set recorded for the student.
	Names string

	// Flag counters copied from the overview row.
	DevToolsAnswers         int
	PasteReportedAnswers    int
	SuspectedPasteAnswers   int
	SuspiciousTypingAnswers int
}

// GetStudentHistory retrieves all stored flag summaries for a student
// key, most recent first.
func (rdb *RunDB) GetStudentHistory(ctx context.Context, studentKey string) ([]StudentFlagHistory, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT f.run_id, r.timestamp, r.source, f.names,
		f.devtools_answers, f.paste_reported_answers,
		f.suspected_paste_answers, f.suspicious_typing_answers
	FROM student_flags f
	JOIN runs r ON r.id = f.run_id
	WHERE f.student_key = ?
	ORDER BY r.timestamp DESC, f.run_id DESC
	`, studentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get student history: %w", err)
	}
	defer rows.Close()

	var results []StudentFlagHistory
	for rows.Next() {
		var h StudentFlagHistory
		var timestamp string

		if err := rows.Scan(
			&h.RunID,
			&timestamp,
			&h.Source,
			&h.Names,
			&h.DevToolsAnswers,
			&h.PasteReportedAnswers,
			&h.SuspectedPasteAnswers,
			&h.SuspiciousTypingAnswers,
		); err != nil {
			return nil, fmt.Errorf("failed to scan student history: %w", err)
		}

		h.Timestamp = parseTimestamp(timestamp)
		results = append(results, h)
	}

	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
