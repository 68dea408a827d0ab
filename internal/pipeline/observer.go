package pipeline

import (
	"context"
	"time"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// Observer receives progress events from a run. Implementations must not
// block for long; they run on the crawl's only goroutine.
type Observer interface {
	// RunStarted is called once the entries to process are known.
	RunStarted(discovered, selected int)

	// ItemStarted is called before an entry is materialized.
	ItemStarted(index, total int, entry model.CatalogEntry)

	// ItemFinished is called with the recorded result of an entry.
	ItemFinished(rec model.ItemRecord)

	// Waited is called after each courtesy delay.
	Waited(d time.Duration)
}

// Ledger records runs for later inspection. It is write-only from the
// orchestrator's point of view: whether an entry is done is decided by the
// filesystem alone.
type Ledger interface {
	BeginRun(ctx context.Context, tally *model.RunTally) (int64, error)
	RecordItem(ctx context.Context, runID int64, rec model.ItemRecord) error
	FinishRun(ctx context.Context, tally *model.RunTally) error
}

// nopObserver ignores all events.
type nopObserver struct{}

func (nopObserver) RunStarted(int, int) {}
func (nopObserver) ItemStarted(int, int, model.CatalogEntry) {}
func (nopObserver) ItemFinished(model.ItemRecord) {}
func (nopObserver) Waited(time.Duration) {}
