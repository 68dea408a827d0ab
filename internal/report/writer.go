package report

import (
	"io"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// Writer defines the interface for report output.
// Implementations write run results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the same API.
type Writer interface {
	// Write outputs the report of one run.
	// Returns the number of bytes written and any error encountered.
	Write(tally *model.RunTally) (int, error)

	// WriteRuns outputs a listing of past runs, most recent first.
	// Item details are not included.
	WriteRuns(runs []*model.RunTally) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(tally *model.RunTally) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(tally)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRuns outputs the run listing to all configured Writers.
func (m *MultiWriter) WriteRuns(runs []*model.RunTally) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRuns(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeFormat is used for every timestamp shown in text and Markdown reports.
const timeFormat = "2006-01-02 15:04:05 MST"

// statusText describes how a run ended.
func statusText(tally *model.RunTally) string {
	switch {
	case tally.Interrupted:
		return "Interrupted (partial results)"
	case tally.FinishedAt.IsZero():
		return "Incomplete"
	case tally.Errors > 0:
		return "Complete with errors"
	default:
		return "Complete"
	}
}

// failures returns the items that did not succeed.
func failures(tally *model.RunTally) []model.ItemRecord {
	var failed []model.ItemRecord
	for _, item := range tally.Items {
		switch item.Outcome {
		case model.OutcomeWritten, model.OutcomeSkipped:
		default:
			failed = append(failed, item)
		}
	}
	return failed
}
