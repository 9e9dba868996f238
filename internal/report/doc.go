// Package report renders completed analyses for output.
//
// Three formats are provided:
//   - JSON for tool integration and archival (the canonical output)
//   - Markdown for sharing with exam staff
//   - Plain text for terminal display
//
// All writers implement the same Writer interface over *model.Analysis,
// so the CLI can combine them freely (e.g. JSON to a file and a text
// summary to the terminal in the same run).
package report
