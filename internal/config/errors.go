package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no telemetry export file is specified.
	ErrNoInput = errors.New("no input specified: provide one or more export files, or - for stdin")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidThreshold is returned when a heuristic threshold is out of
	// range. Thresholds of zero would flag every answer or none.
	ErrInvalidThreshold = errors.New("invalid heuristic threshold: must be positive")

	// ErrInvalidSampleLimit is returned when a report sample cap is not
	// positive.
	ErrInvalidSampleLimit = errors.New("invalid sample limit: must be positive")
)
