// Package main provides the entry point for the proctorscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for proctorscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proctorscan",
		Short: "Anomaly analysis for exam proctoring telemetry",
		Long: `Proctorscan analyzes exam proctoring telemetry exports (JSON) and
produces a review-ready anomaly report: per-student overviews, per-session
issues, cross-student IP usage, and per-answer suspicion flags.

The input is the export written by the exam platform, either the full
envelope ({generatedAt, totals, report: [...]}) or a bare student array.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
