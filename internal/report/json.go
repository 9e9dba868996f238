package report

import (
	"encoding/json"
	"io"

	"github.com/OrPerets/proctorscan/internal/model"
)

// JSONWriter outputs analyses in JSON format.
// This format is designed for tool integration and programmatic processing.
// The serialized shape is the four row sets plus run metadata; the raw
// input and intermediate aggregation state are excluded by the model's
// JSON tags.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the analysis in JSON format.
func (w *JSONWriter) Write(analysis *model.Analysis) (int, error) {
	return w.writeJSON(analysis)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// VersionedReport wraps an analysis with the tool version that produced
// it. Archived output should record what produced it, since threshold
// defaults can change between releases.
type VersionedReport struct {
	// Version is the proctorscan version that generated this analysis.
	Version string `json:"version"`

	// Analysis is the full analysis output.
	Analysis *model.Analysis `json:"analysis"`
}

// VersionedJSONWriter outputs analyses wrapped with version metadata.
type VersionedJSONWriter struct {
	*JSONWriter

	// version is the proctorscan version string.
	version string
}

// NewVersionedJSONWriter creates a writer for version-wrapped output.
func NewVersionedJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *VersionedJSONWriter {
	return &VersionedJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the analysis wrapped with version metadata.
func (w *VersionedJSONWriter) Write(analysis *model.Analysis) (int, error) {
	return w.writeJSON(&VersionedReport{
		Version:  w.version,
		Analysis: analysis,
	})
}
