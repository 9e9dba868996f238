package main

import (
	"encoding/json"
	"fmt"

	"github.com/OrPerets/proctorscan/internal/config"
	"github.com/OrPerets/proctorscan/internal/database"
	"github.com/OrPerets/proctorscan/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects analysis runs archived with 'analyze --save'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect archived analysis runs",
		Long: `History lists analysis runs archived in the run-history database and
retrieves their stored output.

Runs are archived with 'proctorscan analyze --save'. The database also
keeps per-student flag summaries, so a student flagged across several
exports can be spotted without re-running anything.

Examples:
  # List the most recent runs
  proctorscan history

  # List more runs
  proctorscan history --limit 50

  # Dump the stored output of run 5 as JSON
  proctorscan history --run-id 5

  # Show all archived flag summaries for one student
  proctorscan history --student 123456789`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().Int64P("run-id", "i", 0,
		"Dump the stored analysis of a specific run as JSON")
	cmd.Flags().StringP("student", "S", "",
		"Show archived flag summaries for a student key")
	cmd.Flags().String("db-dir", "",
		"Run-history database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// The history database is only created by 'analyze --save'; listing
	// should not create an empty one.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run history found (archive runs with 'analyze --save'): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}
	if runID > 0 {
		return dumpRun(cmd, db, runID)
	}

	student, err := cmd.Flags().GetString("student")
	if err != nil {
		return err
	}
	if student != "" {
		history, err := db.GetStudentHistory(ctx, student)
		if err != nil {
			return err
		}
		return printStudentHistory(cmd, student, history)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	return printRuns(cmd, runs)
}

// dumpRun writes the stored analysis of one run as pretty JSON.
func dumpRun(cmd *cobra.Command, db *database.RunDB, runID int64) error {
	analysis, err := db.GetRunByID(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if analysis == nil {
		return fmt.Errorf("run %d not found (use 'history' to list runs)", runID)
	}

	writer := report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	_, err = writer.Write(analysis)
	return err
}

// printRuns renders the run list for the terminal.
func printRuns(cmd *cobra.Command, runs []database.RunMetadata) error {
	out := cmd.OutOrStdout()

	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived runs.")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-20s %-9s %-9s %-8s %-8s %s\n",
		"ID", "WHEN", "STUDENTS", "SESSIONS", "FLAGGED", "SHARED", "SOURCE")
	for _, run := range runs {
		fmt.Fprintf(out, "%-5d %-20s %-9d %-9d %-8d %-8d %s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Totals.Students,
			run.Totals.Sessions,
			run.FlaggedStudents,
			run.SharedIPs,
			run.Source,
		)
	}
	return nil
}

// printStudentHistory renders one student's archived flag summaries.
func printStudentHistory(cmd *cobra.Command, student string, history []database.StudentFlagHistory) error {
	out := cmd.OutOrStdout()

	if len(history) == 0 {
		fmt.Fprintf(out, "No archived flags for student %s.\n", student)
		return nil
	}

	// JSON keeps this scriptable; the list is usually short.
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(history)
}
