// Package main provides the entry point for the proctorscan CLI.
//
// Proctorscan analyzes exam proctoring telemetry exports for anomalies.
// It normalizes student identities, derives per-answer suspicion flags,
// and cross-references client IPs across students.
//
// Usage:
//
//	proctorscan analyze <export-file>
//	proctorscan analyze --json export-a.json export-b.json
//
// See --help for all available options.
package main

// main is the entry point for proctorscan.
func main() {
	Execute()
}
