package pipeline

import (
	"context"
	"testing"
)

// TestBatchProcessor tests concurrent multi-file processing.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("preserves input order in results", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			writeExport(t, `[{"studentName": "A", "sessions": []}]`),
			writeExport(t, `[{"studentName": "B", "sessions": []}]`),
			writeExport(t, `[{"studentName": "C", "sessions": []}]`),
		}

		bp := NewBatchProcessor(func() *Pipeline {
			return DefaultPipeline(nil, nil, WithLogger(silentLogger()))
		}, WithBatchLogger(silentLogger()), WithConcurrency(2))

		results, err := bp.ProcessBatch(context.Background(), inputs)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}

		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, want := range []string{"A", "B", "C"} {
			if results[i] == nil {
				t.Fatalf("result %d is nil", i)
			}
			if results[i].Source != inputs[i] {
				t.Errorf("result %d source = %q, want %q", i, results[i].Source, inputs[i])
			}
			if len(results[i].Report) != 1 || results[i].Report[0].StudentName != want {
				t.Errorf("result %d: unexpected report %+v", i, results[i].Report)
			}
		}
	})

	t.Run("one failed input does not sink the batch", func(t *testing.T) {
		t.Parallel()

		good := writeExport(t, `[{"studentName": "A", "sessions": []}]`)
		bad := writeExport(t, `{"report": "not an array"}`)

		bp := NewBatchProcessor(func() *Pipeline {
			return DefaultPipeline(nil, nil, WithLogger(silentLogger()))
		}, WithBatchLogger(silentLogger()))

		results, err := bp.ProcessBatch(context.Background(), []string{good, bad})
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}

		if results[0].ErrorMessage != "" {
			t.Errorf("good input recorded error: %q", results[0].ErrorMessage)
		}
		if results[1].ErrorMessage == "" {
			t.Error("bad input should record its decode error")
		}
	})

	t.Run("respects cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(func() *Pipeline {
			return DefaultPipeline(nil, nil, WithLogger(silentLogger()))
		}, WithBatchLogger(silentLogger()))

		input := writeExport(t, `[]`)
		results, err := bp.ProcessBatch(ctx, []string{input})

		if err == nil {
			t.Error("expected cancellation error")
		}
		if len(results) != 1 {
			t.Errorf("expected placeholder results, got %d", len(results))
		}
	})

	t.Run("zero concurrency option keeps the default", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New(WithLogger(silentLogger())) },
			WithBatchLogger(silentLogger()), WithConcurrency(0))

		if bp.concurrency != 4 {
			t.Errorf("concurrency = %d, want default 4", bp.concurrency)
		}
	})
}

// TestBatchProcessorEmptyInput verifies an empty batch completes cleanly.
func TestBatchProcessorEmptyInput(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(func() *Pipeline { return New(WithLogger(silentLogger())) },
		WithBatchLogger(silentLogger()))

	results, err := bp.ProcessBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
