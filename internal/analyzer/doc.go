// Package analyzer implements the anomaly-detection and aggregation
// engine over exam-proctoring telemetry.
//
// The engine is a single logical pass over an in-memory report:
//   - ComputeFlags derives per-answer suspicion flags from noisy,
//     optional behavioral fields
//   - Aggregate folds sessions and answers into one running aggregate
//     per canonical student key while building the IP reverse index
//   - SharedIPs cross-references the index for IPs used by more than
//     one student
//   - Synthesize combines aggregates, per-session tallies, and the
//     cross-reference into the four output row sets
//
// All derived state is created fresh per run and discarded afterwards;
// there is no persisted state between runs. Within a well-formed report
// every field-level defect is absorbed locally, so one bad record never
// discards the rest of the analysis.
package analyzer
