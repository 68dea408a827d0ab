package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools unchanged.
type SimpleWriter struct {
	baseWriter

	// verbose lists every item instead of only the failures.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with every processed item.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(tally *model.RunTally) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n--- Scraping complete ---\n")
	fmt.Fprintf(&sb, "Successfully processed: %d games\n", tally.Processed)
	fmt.Fprintf(&sb, "Errors encountered: %d games\n", tally.Errors)
	fmt.Fprintf(&sb, "Markdown files saved in: '%s'\n", tally.OutputDir)

	if tally.Interrupted {
		sb.WriteString("Run was interrupted; remaining games were not processed.\n")
	}

	if w.verbose {
		w.writeCounters(&sb, tally)
		w.writeItems(&sb, tally.Items)
	} else if failed := failures(tally); len(failed) > 0 {
		sb.WriteString("\nFailed games:\n")
		w.writeItems(&sb, failed)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeCounters writes the detailed counters of a run.
func (w *SimpleWriter) writeCounters(sb *strings.Builder, tally *model.RunTally) {
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  Discovered: %d\n", tally.Discovered)
	fmt.Fprintf(sb, "  Selected:   %d\n", tally.Total)
	fmt.Fprintf(sb, "  Written:    %d\n", tally.Written)
	fmt.Fprintf(sb, "  Skipped:    %d\n", tally.Skipped)
	fmt.Fprintf(sb, "  Requests:   %d\n", tally.Requests)
	fmt.Fprintf(sb, "  Waited:     %s\n", tally.Waited)
	if !tally.FinishedAt.IsZero() {
		fmt.Fprintf(sb, "  Duration:   %s\n", tally.Duration().Round(time.Millisecond))
	}
	sb.WriteString("\n")
}

// writeItems writes one line per item.
func (w *SimpleWriter) writeItems(sb *strings.Builder, items []model.ItemRecord) {
	for _, item := range items {
		fmt.Fprintf(sb, "  [%s] %s", item.Outcome, item.Title)
		if item.Error != "" {
			fmt.Fprintf(sb, ": %s", item.Error)
		}
		sb.WriteString("\n")
	}
}

// WriteRuns outputs a table of past runs.
func (w *SimpleWriter) WriteRuns(runs []*model.RunTally) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-6s %-23s %-9s %-9s %-6s %-6s %s\n",
		"ID", "STARTED", "SELECTED", "PROCESSED", "ERRORS", "LETTER", "OUTPUT")
	for _, run := range runs {
		letter := run.Letter
		if letter == "" {
			letter = "-"
		}
		fmt.Fprintf(&sb, "%-6d %-23s %-9d %-9d %-6d %-6s %s\n",
			run.RunID,
			run.StartedAt.Local().Format(timeFormat),
			run.Total,
			run.Processed,
			run.Errors,
			letter,
			run.OutputDir,
		)
	}

	return w.output.Write([]byte(sb.String()))
}
