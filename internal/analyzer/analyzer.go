package analyzer

import (
	"log/slog"

	"github.com/OrPerets/proctorscan/internal/config"
	"github.com/OrPerets/proctorscan/internal/model"
)

// Analyzer runs the aggregation engine with a fixed set of heuristic
// thresholds. It carries no per-run state: the same Analyzer can process
// any number of reports, each producing fresh derived state.
type Analyzer struct {
	thresholds     config.Thresholds
	sampleIPs      int
	sampleStudents int
	logger         *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger for the analyzer.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer from the given configuration.
// A nil config uses the built-in defaults.
func New(cfg *config.Config, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	a := &Analyzer{
		thresholds:     cfg.Thresholds,
		sampleIPs:      cfg.SampleIPLimit,
		sampleStudents: cfg.SampleStudentLimit,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Analyze runs the full transform over the decoded report attached to
// the analysis: aggregation, IP cross-referencing, and row synthesis.
// The report itself is never mutated.
func (a *Analyzer) Analyze(analysis *model.Analysis) error {
	aggs, index := a.Aggregate(analysis.Report)
	analysis.Aggregates = aggs
	analysis.Index = index

	analysis.Totals = countTotals(analysis.Report)
	analysis.SharedIPs = a.SharedIPs(index)
	a.Synthesize(analysis)

	a.logger.Info("analysis complete",
		"source", analysis.Source,
		"students", analysis.Totals.Students,
		"sessions", analysis.Totals.Sessions,
		"answers", analysis.Totals.Answers,
		"flagged_students", analysis.FlaggedStudents(),
		"shared_ips", len(analysis.SharedIPs),
	)
	return nil
}

// countTotals walks the report once for the summary counts, mirroring
// the totals line of the original export job.
func countTotals(students []model.StudentRecord) model.Totals {
	totals := model.Totals{Students: len(students)}
	for i := range students {
		totals.Sessions += len(students[i].Sessions)
		for j := range students[i].Sessions {
			totals.Answers += len(students[i].Sessions[j].Answers)
		}
	}
	return totals
}
