// Package field provides defensive accessors over loosely-typed JSON data.
//
// Exam telemetry exports carry deeply nested optional mappings
// (behaviorAnalytics, comprehensiveMetrics, browserFingerprint) whose
// presence and types vary between proctoring client versions. This package
// replaces long optional chains with an explicit sequence of "lookup with
// default" steps: every accessor returns a usable zero value when a key is
// absent or carries the wrong type, and never panics.
//
// Design decision: We centralize defensive access in one package rather
// than scattering type assertions through the analyzer because:
//  1. The fallback behavior becomes an explicit, testable branch
//  2. Heuristic code reads as logic, not as type plumbing
//  3. A single definition of "truthy" and "numeric" keeps flag
//     derivations consistent across components
package field
