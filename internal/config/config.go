package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The heuristic thresholds mirror the values used by the exam platform's
// original review tooling so that findings stay comparable across tools.
const (
	// DefaultHighWPMThreshold marks reported words-per-minute at or above
	// this value as suspicious. 120 WPM is beyond plausible sustained
	// human typing for free-text exam answers.
	DefaultHighWPMThreshold = 120.0

	// DefaultPasteMinAnswerLength is the minimum answer length (in
	// characters) for the "long text, almost no keystrokes" paste
	// heuristic to apply.
	DefaultPasteMinAnswerLength = 30

	// DefaultPasteMaxTypingEvents is the maximum number of recorded
	// typing events that still counts as "almost no keystrokes".
	DefaultPasteMaxTypingEvents = 3

	// DefaultFastAnswerMaxSeconds is the elapsed-time ceiling for the
	// "impossible to type that fast" paste heuristic.
	DefaultFastAnswerMaxSeconds = 5.0

	// DefaultFastAnswerMinLength is the minimum answer length for the
	// fast-answer heuristic; shorter answers can be typed in seconds.
	DefaultFastAnswerMinLength = 10

	// DefaultSampleIPLimit caps the IP sample shown per student in the
	// overview output.
	DefaultSampleIPLimit = 5

	// DefaultSampleStudentLimit caps the student sample shown per shared
	// IP in the cross-reference output.
	DefaultSampleStudentLimit = 10

	// DefaultBatchSize is the number of input files analyzed
	// concurrently. Each file is still one single-pass run.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "proctorscan"
)

// Thresholds groups the tunable heuristic parameters. They are kept in
// one struct so the YAML config file and the analyzer share a single
// definition.
type Thresholds struct {
	// HighWPM flags answers whose reported words-per-minute is at or
	// above this value.
	HighWPM float64 `yaml:"highWPM"`

	// PasteMinAnswerLength and PasteMaxTypingEvents define the
	// "long answer, almost no keystrokes" paste trigger.
	PasteMinAnswerLength int `yaml:"pasteMinAnswerLength"`
	PasteMaxTypingEvents int `yaml:"pasteMaxTypingEvents"`

	// FastAnswerMaxSeconds and FastAnswerMinLength define the
	// "text appeared faster than typable" paste trigger.
	FastAnswerMaxSeconds float64 `yaml:"fastAnswerMaxSeconds"`
	FastAnswerMinLength  int     `yaml:"fastAnswerMinLength"`
}

// DefaultThresholds returns the built-in heuristic thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighWPM:              DefaultHighWPMThreshold,
		PasteMinAnswerLength: DefaultPasteMinAnswerLength,
		PasteMaxTypingEvents: DefaultPasteMaxTypingEvents,
		FastAnswerMaxSeconds: DefaultFastAnswerMaxSeconds,
		FastAnswerMinLength:  DefaultFastAnswerMinLength,
	}
}

// Config holds all configuration options for proctorscan.
//
// Design decision: We use a single flat struct instead of nested structs
// for everything except Thresholds, which the config file needs as a
// unit. The number of options is manageable, and nesting would add
// complexity without significant benefit.
type Config struct {
	// Inputs is the list of telemetry export files to analyze.
	// "-" means standard input.
	Inputs []string

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output with one table per
	// row set. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written to this file instead of stdout; directories are
	// created automatically.
	ReportFile string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of input files analyzed concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .proctorscan in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// Thresholds are the heuristic parameters for flag derivation.
	Thresholds Thresholds

	// SampleIPLimit and SampleStudentLimit cap report samples.
	SampleIPLimit      int
	SampleStudentLimit int

	// DBDir is the directory for the SQLite run-history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to archive analysis runs in the
	// history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor instead of relying on zero
// values because most defaults are non-zero thresholds. The constructor
// also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BatchSize:          DefaultBatchSize,
		Thresholds:         DefaultThresholds(),
		SampleIPLimit:      DefaultSampleIPLimit,
		SampleStudentLimit: DefaultSampleStudentLimit,
		DBDir:              XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for proctorscan.
// On Linux: ~/.local/share/proctorscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast with a clear message. The first error found
// is returned; fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Thresholds.HighWPM <= 0 {
		return ErrInvalidThreshold
	}
	if c.Thresholds.PasteMinAnswerLength <= 0 || c.Thresholds.FastAnswerMinLength <= 0 {
		return ErrInvalidThreshold
	}
	if c.Thresholds.PasteMaxTypingEvents < 0 || c.Thresholds.FastAnswerMaxSeconds < 0 {
		return ErrInvalidThreshold
	}
	if c.SampleIPLimit <= 0 || c.SampleStudentLimit <= 0 {
		return ErrInvalidSampleLimit
	}
	return nil
}
