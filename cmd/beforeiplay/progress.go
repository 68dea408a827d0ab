package main

import (
	"fmt"
	"io"
	"time"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// consoleObserver prints run progress for a person watching the terminal.
type consoleObserver struct {
	out io.Writer
}

func newConsoleObserver(out io.Writer) *consoleObserver {
	return &consoleObserver{out: out}
}

func (o *consoleObserver) RunStarted(discovered, selected int) {
	fmt.Fprintf(o.out, "Found %d potential game links.\n", discovered)
	if selected == 0 {
		fmt.Fprintln(o.out, "No games match the specified criteria. Exiting.")
		return
	}
	if selected < discovered {
		fmt.Fprintf(o.out, "Selected %d of %d games.\n", selected, discovered)
	}
	fmt.Fprintf(o.out, "Beginning processing for %d games...\n", selected)
}

func (o *consoleObserver) ItemStarted(index, total int, entry model.CatalogEntry) {
	fmt.Fprintf(o.out, "\n--- Processing game %d/%d ---\n", index, total)
	fmt.Fprintf(o.out, "Processing '%s' (%s)...\n", entry.Title, entry.URL)
}

func (o *consoleObserver) ItemFinished(rec model.ItemRecord) {
	switch {
	case rec.Outcome == model.OutcomeSkipped:
		fmt.Fprintf(o.out, "Skipping '%s', Markdown file already exists at %s.\n", rec.Title, rec.Path)
	case rec.Outcome == model.OutcomeWritten && rec.Placeholder:
		fmt.Fprintf(o.out, "Warning: Could not find main content area for '%s'. Saved placeholder: %s\n", rec.Title, rec.Path)
	case rec.Outcome == model.OutcomeWritten:
		fmt.Fprintf(o.out, "Saved: %s\n", rec.Path)
	default:
		fmt.Fprintf(o.out, "Failed '%s' (%s): %s\n", rec.Title, rec.Outcome, rec.Error)
	}
}

func (o *consoleObserver) Waited(d time.Duration) {
	fmt.Fprintf(o.out, "Waited %.2f seconds before next request.\n", d.Seconds())
}
