package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, which gives tables, GitHub alerts and mermaid charts without
// hand-built string formatting.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(tally *model.RunTally) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, tally)
	w.writeSummary(md, tally)
	w.writeFailures(md, tally)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, tally *model.RunTally) {
	md.H1("Scrape Report")
	md.PlainText("")

	letter := tally.Letter
	if letter == "" {
		letter = "all"
	}

	rows := [][]string{
		{"Output Directory", "`" + tally.OutputDir + "`"},
		{"Started", tally.StartedAt.Local().Format(timeFormat)},
		{"Letter", letter},
		{"Status", statusText(tally)},
	}
	if !tally.FinishedAt.IsZero() {
		rows = append(rows, []string{"Duration", tally.Duration().Round(time.Millisecond).String()})
	}
	if tally.RunID > 0 {
		rows = append(rows, []string{"Run ID", strconv.FormatInt(tally.RunID, 10)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the counters and an outcome chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, tally *model.RunTally) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Discovered", strconv.Itoa(tally.Discovered)},
			{"Selected", strconv.Itoa(tally.Total)},
			{"Written", strconv.Itoa(tally.Written)},
			{"Skipped", strconv.Itoa(tally.Skipped)},
			{"Errors", strconv.Itoa(tally.Errors)},
			{"Requests", strconv.Itoa(tally.Requests)},
			{"**Processed**", "**" + strconv.Itoa(tally.Processed) + "**"},
		},
	})
	md.PlainText("")

	if tally.Written+tally.Skipped+tally.Errors > 0 {
		w.writePieChart(md, tally)
	}

	switch {
	case tally.Interrupted:
		md.Warningf("The run was interrupted. Run it again to continue where it stopped.")
	case tally.Errors > 0:
		md.Importantf("%d game(s) could not be saved. They will be retried on the next run.", tally.Errors)
	case tally.Total == 0:
		md.Note("No games matched the selection.")
	default:
		md.Tip("All selected games are saved.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of item outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, tally *model.RunTally) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Outcomes"),
		piechart.WithShowData(true),
	)

	if tally.Written > 0 {
		chart.LabelAndIntValue("Written", uint64(tally.Written))
	}
	if tally.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(tally.Skipped))
	}
	if tally.Errors > 0 {
		chart.LabelAndIntValue("Errors", uint64(tally.Errors))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailures lists the items that failed.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, tally *model.RunTally) {
	failed := failures(tally)
	if len(failed) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(failed))
	for i, item := range failed {
		reason := item.Error
		if reason == "" {
			reason = "-"
		}
		rows[i] = []string{
			item.Title,
			item.Outcome.String(),
			truncateString(item.URL, 60),
			truncateString(reason, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Outcome", "URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteRuns outputs the run listing as a Markdown table.
func (w *MarkdownWriter) WriteRuns(runs []*model.RunTally) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			strconv.FormatInt(run.RunID, 10),
			run.StartedAt.Local().Format(timeFormat),
			strconv.Itoa(run.Total),
			strconv.Itoa(run.Processed),
			strconv.Itoa(run.Errors),
			statusText(run),
			"`" + run.OutputDir + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Selected", "Processed", "Errors", "Status", "Output"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by beforeiplay-scraper*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
