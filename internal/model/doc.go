// Package model defines the core data structures used throughout proctorscan.
//
// This package contains the following main types:
//   - StudentRecord / SessionEntry / AnswerRecord: the immutable input
//     report produced by the exam platform's telemetry export
//   - AnswerFlags: per-answer suspicion flags derived by the analyzer
//   - StudentAggregate / IPIndex: derived per-run aggregation state
//   - Analysis: the full result of one run, including the four output
//     row sets consumed by report writers
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (loader, analyzer, report,
// database) need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage. Derived state (aggregates, IP index) lives only for the
// duration of one analysis run and is rebuilt from scratch each run.
package model
