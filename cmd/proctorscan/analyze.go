package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/OrPerets/proctorscan/internal/config"
	"github.com/OrPerets/proctorscan/internal/database"
	"github.com/OrPerets/proctorscan/internal/log"
	"github.com/OrPerets/proctorscan/internal/model"
	"github.com/OrPerets/proctorscan/internal/pipeline"
	"github.com/OrPerets/proctorscan/internal/report"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [export-file...]",
		Short: "Analyze exam telemetry exports for anomalies",
		Long: `Analyze reads one or more telemetry export files and produces an
anomaly report with four row sets:

- StudentsOverview: one row per student with flag counters
- SessionIssues: one row per session with at least one issue
- IPsAcrossStudents: IP addresses used by multiple students
- AnswersFlags: one row per flagged answer with its reasons

The export path "-" reads from standard input.

Examples:
  # Analyze a single export with a terminal summary
  proctorscan analyze export.json

  # Full JSON output to a file
  proctorscan analyze --json --output report.json export.json

  # Markdown report for sharing with exam staff
  proctorscan analyze --markdown export.json

  # Analyze several weekly exports concurrently
  proctorscan analyze week-1.json week-2.json week-3.json

  # Archive the run in the history database
  proctorscan analyze --save export.json

  # Use custom thresholds from a configuration file
  proctorscan analyze -c review.yaml export.json

Configuration file (.proctorscan) example:
  thresholds:
    highWPM: 140
    pasteMinAnswerLength: 50
  sampleIPLimit: 10`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Batch analysis flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent analyses when multiple files are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .proctorscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().BoolP("save", "s", false,
		"Archive the analysis in the run-history database")
	cmd.Flags().String("db-dir", "",
		"Run-history database directory (default: XDG data directory)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Redacting logger: telemetry identifies real students, so log
	// output masks emails, ids, and IPs even in verbose mode.
	logger := log.NewRedactLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load threshold overrides from the config file.
	// If the user explicitly specified a path, a missing file is an error;
	// otherwise the built-in defaults are used silently.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the export files to analyze.
	cfg.Inputs = args

	return cfg, nil
}

// runAnalyze executes the analysis over all configured inputs.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"inputs", len(cfg.Inputs),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the history database only when archiving is requested.
	var db *database.RunDB
	var saver pipeline.RunSaver
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		saver = db
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	if len(cfg.Inputs) > 1 && cfg.BatchSize > 1 {
		return runBatchAnalyze(ctx, cfg, saver, logger)
	}
	return runSequentialAnalyze(ctx, cfg, saver, logger)
}

// runSequentialAnalyze processes inputs one at a time.
func runSequentialAnalyze(ctx context.Context, cfg *config.Config, saver pipeline.RunSaver, logger *slog.Logger) error {
	for _, input := range cfg.Inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p := pipeline.DefaultPipeline(cfg, saver, pipeline.WithLogger(logger))
		analysis := model.NewAnalysis(input)

		startTime := time.Now()
		if err := p.Execute(ctx, analysis); err != nil {
			logger.Error("analysis failed", "input", input, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", input, err)
			continue
		}

		logger.Debug("analysis finished",
			"input", input,
			"elapsed", time.Since(startTime).Round(time.Millisecond),
		)

		if err := outputReport(cfg, analysis); err != nil {
			logger.Error("report failed", "input", input, "error", err)
		}
	}

	return nil
}

// runBatchAnalyze processes multiple inputs concurrently.
func runBatchAnalyze(ctx context.Context, cfg *config.Config, saver pipeline.RunSaver, logger *slog.Logger) error {
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(cfg, saver, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	analyses, err := bp.ProcessBatch(ctx, cfg.Inputs)
	if err != nil {
		return err
	}

	// Output in input order once all runs finished.
	for _, analysis := range analyses {
		if analysis == nil {
			continue
		}
		if analysis.ErrorMessage != "" {
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %s\n", analysis.Source, analysis.ErrorMessage)
			continue
		}
		if err := outputReport(cfg, analysis); err != nil {
			logger.Error("report failed", "input", analysis.Source, "error", err)
		}
	}

	return nil
}

// outputReport renders the analysis in the requested format.
func outputReport(cfg *config.Config, analysis *model.Analysis) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600: the report names students and their flags.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(analysis)
	return err
}
