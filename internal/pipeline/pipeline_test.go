package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/OrPerets/proctorscan/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, analysis *model.Analysis) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, analysis *model.Analysis) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, analysis)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "first"},
			&mockStep{name: "second"},
			&mockStep{name: "third"},
		)

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New(WithLogger(silentLogger()))
		for _, name := range []string{"first", "second", "third"} {
			p.AddStep(&mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.Analysis) error {
					executionOrder = append(executionOrder, name)
					return nil
				},
			})
		}

		analysis := model.NewAnalysis("test")
		if err := p.Execute(context.Background(), analysis); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		expected := []string{"first", "second", "third"}
		for i, name := range executionOrder {
			if name != expected[i] {
				t.Errorf("execution %d: got %q, expected %q", i, name, expected[i])
			}
		}
		if len(analysis.PerformedSteps) != 3 {
			t.Errorf("expected 3 performed steps, got %v", analysis.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("step failed")
		second := &mockStep{name: "second"}

		p := New(WithLogger(silentLogger()))
		p.AddStep(&mockStep{
			name: "first",
			doFunc: func(_ context.Context, _ *model.Analysis) error {
				return stepErr
			},
		})
		p.AddStep(second)

		analysis := model.NewAnalysis("test")
		err := p.Execute(context.Background(), analysis)

		if !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have run")
		}
		if analysis.ErrorMessage != "step failed" {
			t.Errorf("ErrorMessage = %q", analysis.ErrorMessage)
		}
	})

	t.Run("continues after error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "second"}

		p := New(WithLogger(silentLogger()), WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "first",
			doFunc: func(_ context.Context, _ *model.Analysis) error {
				return errors.New("non-fatal")
			},
		})
		p.AddStep(second)

		analysis := model.NewAnalysis("test")
		if err := p.Execute(context.Background(), analysis); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if second.callCount != 1 {
			t.Error("second step should have run")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never-runs"}
		p := New(WithLogger(silentLogger()))
		p.AddStep(step)

		err := p.Execute(ctx, model.NewAnalysis("test"))

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have run after cancellation")
		}
	})
}
