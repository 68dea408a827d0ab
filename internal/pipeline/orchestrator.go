package pipeline

import (
	"context"
	"log/slog"

	"github.com/glimgeist/beforeiplay-scraper/internal/log"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
	"github.com/glimgeist/beforeiplay-scraper/internal/naming"
	"github.com/glimgeist/beforeiplay-scraper/internal/ratelimit"
)

// Lister lists catalog entries.
type Lister interface {
	List(ctx context.Context) ([]model.CatalogEntry, error)
}

// EntryFilter drops entries before letter filtering and limiting. It returns
// the kept entries and how many were dropped.
type EntryFilter interface {
	Filter(entries []model.CatalogEntry) ([]model.CatalogEntry, int)
}

// Orchestrator drives a crawl run.
type Orchestrator struct {
	lister       Lister
	materializer *Materializer
	waiter       ratelimit.Waiter
	bucket       naming.Bucket
	limit        int
	filter       EntryFilter
	observer     Observer
	ledger       Ledger
	logger       *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithBucket restricts the run to one bucket. Empty means all buckets.
func WithBucket(b naming.Bucket) OrchestratorOption {
	return func(o *Orchestrator) {
		o.bucket = b
	}
}

// WithLimit caps the number of entries processed after filtering.
// Zero means no limit.
func WithLimit(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.limit = n
	}
}

// WithWaiter sets the courtesy delay between requests.
func WithWaiter(w ratelimit.Waiter) OrchestratorOption {
	return func(o *Orchestrator) {
		if w != nil {
			o.waiter = w
		}
	}
}

// WithEntryFilter drops entries before letter filtering, for example those
// disallowed by robots.txt.
func WithEntryFilter(f EntryFilter) OrchestratorOption {
	return func(o *Orchestrator) {
		o.filter = f
	}
}

// WithObserver receives progress events.
func WithObserver(obs Observer) OrchestratorOption {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLedger records the run.
func WithLedger(l Ledger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.ledger = l
	}
}

// WithOrchestratorLogger sets the logger.
func WithOrchestratorLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(lister Lister, m *Materializer, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		lister:       lister,
		materializer: m,
		waiter:       ratelimit.NewDelay(0, false),
		observer:     nopObserver{},
		logger:       log.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Select applies the entry filter, the bucket filter and the limit, in that
// order. Filtering happens before limiting, so a limit counts only entries in
// the selected bucket.
func (o *Orchestrator) Select(entries []model.CatalogEntry) []model.CatalogEntry {
	if o.filter != nil {
		var dropped int
		entries, dropped = o.filter.Filter(entries)
		if dropped > 0 {
			o.logger.Info("entries excluded by filter", "count", dropped)
		}
	}
	entries = FilterByBucket(entries, o.bucket)
	return Limit(entries, o.limit)
}

// Run lists the catalog and materializes the selected entries in order.
//
// A catalog failure is logged and treated as an empty catalog: the run ends
// cleanly with a zero tally. The only error returned is the context's, when
// the run is interrupted; the tally is valid in that case too.
func (o *Orchestrator) Run(ctx context.Context) (*model.RunTally, error) {
	tally := model.NewRunTally(o.materializer.Root())
	tally.Letter = string(o.bucket)

	catalog, err := o.lister.List(ctx)
	if err != nil {
		o.logger.Error("failed to list catalog", "error", err)
		catalog = nil
	}
	tally.Discovered = len(catalog)

	namer := naming.NewNamer(catalog)
	if n := namer.Collisions(); n > 0 {
		o.logger.Warn("titles collide after sanitizing; suffixed identifiers assigned", "count", n)
	}
	m := o.materializer.WithNamer(namer)

	entries := o.Select(catalog)
	tally.Total = len(entries)
	o.observer.RunStarted(tally.Discovered, tally.Total)

	if len(entries) == 0 {
		o.logger.Info("no entries to process")
		tally.Finish()
		return tally, ctx.Err()
	}

	runID := o.beginRun(ctx, tally)

	for i, entry := range entries {
		if ctx.Err() != nil {
			tally.Interrupted = true
			break
		}

		o.observer.ItemStarted(i+1, len(entries), entry)
		res := m.Materialize(ctx, entry)
		rec := tally.Record(entry, res)
		o.recordItem(ctx, runID, rec)
		o.observer.ItemFinished(rec)

		if res.RequestMade && i < len(entries)-1 {
			d := o.waiter.Wait(ctx)
			tally.Waited += d
			o.observer.Waited(d)
		}
	}
	if ctx.Err() != nil {
		tally.Interrupted = true
	}

	tally.Finish()
	o.finishRun(ctx, tally)

	if tally.Interrupted {
		return tally, ctx.Err()
	}
	return tally, nil
}

func (o *Orchestrator) beginRun(ctx context.Context, tally *model.RunTally) int64 {
	if o.ledger == nil {
		return 0
	}
	id, err := o.ledger.BeginRun(ctx, tally)
	if err != nil {
		o.logger.Warn("failed to record run start", "error", err)
		return 0
	}
	tally.RunID = id
	return id
}

func (o *Orchestrator) recordItem(ctx context.Context, runID int64, rec model.ItemRecord) {
	if o.ledger == nil || runID == 0 {
		return
	}
	if err := o.ledger.RecordItem(context.WithoutCancel(ctx), runID, rec); err != nil {
		o.logger.Warn("failed to record item", "title", rec.Title, "error", err)
	}
}

func (o *Orchestrator) finishRun(ctx context.Context, tally *model.RunTally) {
	if o.ledger == nil || tally.RunID == 0 {
		return
	}
	// Recorded even after cancellation so the ledger shows the interruption.
	if err := o.ledger.FinishRun(context.WithoutCancel(ctx), tally); err != nil {
		o.logger.Warn("failed to record run end", "error", err)
	}
}
