package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/OrPerets/proctorscan/internal/analyzer"
	"github.com/OrPerets/proctorscan/internal/config"
	"github.com/OrPerets/proctorscan/internal/loader"
	"github.com/OrPerets/proctorscan/internal/model"
)

// DecodeStep reads and decodes the telemetry export named by the
// analysis source. It is the first step of every run; everything after
// it operates on the decoded report.
type DecodeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// DecodeStepOption configures a DecodeStep.
type DecodeStepOption func(*DecodeStep)

// WithDecodeLogger sets a custom logger for the decode step.
func WithDecodeLogger(logger *slog.Logger) DecodeStepOption {
	return func(s *DecodeStep) {
		s.logger = logger
	}
}

// NewDecodeStep creates a new decode step.
func NewDecodeStep(opts ...DecodeStepOption) *DecodeStep {
	s := &DecodeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DecodeStep) Name() string {
	return "decode"
}

// Do reads the export and attaches the decoded report to the analysis.
// When the envelope carries its own generation timestamp, it replaces
// the run timestamp so output reflects when the data was exported.
func (s *DecodeStep) Do(_ context.Context, analysis *model.Analysis) error {
	export, err := loader.Load(analysis.Source)
	if err != nil {
		return err
	}

	analysis.Report = export.Students
	if ts, ok := model.NormalizeTimestamp(export.GeneratedAt).(time.Time); ok {
		analysis.GeneratedAt = ts
	}

	s.logger.Debug("export decoded",
		"source", analysis.Source,
		"students", len(export.Students),
	)
	return nil
}

// AnalyzeStep runs the aggregation engine over the decoded report.
type AnalyzeStep struct {
	// analyzer carries the heuristic thresholds for the run.
	analyzer *analyzer.Analyzer
}

// NewAnalyzeStep creates a new analysis step around the given analyzer.
func NewAnalyzeStep(a *analyzer.Analyzer) *AnalyzeStep {
	return &AnalyzeStep{analyzer: a}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step.
func (s *AnalyzeStep) Do(_ context.Context, analysis *model.Analysis) error {
	return s.analyzer.Analyze(analysis)
}

// RunSaver persists a completed analysis to run history.
// Implemented by database.RunDB; defined here so the step can be tested
// without a real database.
type RunSaver interface {
	SaveRun(ctx context.Context, analysis *model.Analysis) error
}

// SaveStep persists the finished analysis to run history.
//
// Design decision: Persistence failures are logged but never fail the
// pipeline. The analysis output is the product of the run; history is
// an optional convenience on top of it.
type SaveStep struct {
	// db is the run-history store.
	db RunSaver

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a new save step writing to db.
func NewSaveStep(db RunSaver, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save_history"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, analysis *model.Analysis) error {
	if s.db == nil {
		s.logger.Debug("skipping history save, no database configured")
		return nil
	}

	if err := s.db.SaveRun(ctx, analysis); err != nil {
		s.logger.Warn("failed to save run history",
			"source", analysis.Source,
			"error", err,
		)
	}
	return nil
}

// DefaultPipeline creates a pipeline with the standard steps configured:
// decode, analyze, and (when db is non-nil) history persistence.
//
// Design decision: We provide a default pipeline because the CLI and the
// batch processor both want the same step ordering, and keeping it in
// one place ensures they never drift apart.
func DefaultPipeline(cfg *config.Config, db RunSaver, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewDecodeStep(WithDecodeLogger(p.logger)),
		NewAnalyzeStep(analyzer.New(cfg, analyzer.WithLogger(p.logger))),
	)
	if db != nil {
		p.AddStep(NewSaveStep(db, WithSaveLogger(p.logger)))
	}

	return p
}
