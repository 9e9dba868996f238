// Package log provides privacy-aware logging with automatic redaction
// of student personal data, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic redaction of student emails, ids, and client IPs
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Privacy Features
//
// The RedactHandler automatically redacts personal information in log
// output:
//   - Email addresses (local part masked, domain kept for debugging)
//   - National student id numbers
//   - Client IP addresses (host part masked, prefix kept)
//
// Even in verbose mode, personal values are masked. Exam telemetry
// identifies real students; logs are routinely pasted into tickets and
// chat, so the logging layer is the place to make leaks impossible.
//
// # Usage
//
//	// Create a redacting logger
//	logger := log.NewRedactLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("session aggregated",
//	    "email", "dana@student.example",  // logged as "***@student.example"
//	    "source", "export.json",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
