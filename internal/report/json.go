package report

import (
	"encoding/json"
	"io"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in the envelope when set.
	version string
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
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in every report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a run with metadata.
//
// Design decision: We wrap the tally rather than adding fields to it so
// output-specific data stays out of the core data structure.
type JSONReport struct {
	// Version is the tool version that generated this report.
	Version string `json:"version,omitempty"`

	// Status describes how the run ended.
	Status string `json:"status"`

	// Run is the run tally including its items.
	Run *model.RunTally `json:"run"`
}

// Write outputs the run wrapped with metadata.
func (w *JSONWriter) Write(tally *model.RunTally) (int, error) {
	return w.writeJSON(&JSONReport{
		Version: w.version,
		Status:  statusText(tally),
		Run:     tally,
	})
}

// WriteRuns outputs the run listing as a JSON array.
func (w *JSONWriter) WriteRuns(runs []*model.RunTally) (int, error) {
	if runs == nil {
		runs = make([]*model.RunTally, 0)
	}
	return w.writeJSON(runs)
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

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
