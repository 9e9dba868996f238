// Package database provides SQLite-based run history for proctorscan.
//
// This package implements the RunDB, which stores:
//   - One record per analysis run with summary counts
//   - The full serialized analysis for later retrieval
//   - Per-student flag summaries for cross-run lookups
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
