package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/glimgeist/beforeiplay-scraper/internal/extract"
	"github.com/glimgeist/beforeiplay-scraper/internal/log"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
	"github.com/glimgeist/beforeiplay-scraper/internal/naming"
	"github.com/glimgeist/beforeiplay-scraper/internal/storage"
)

// Materializer turns catalog entries into Markdown artifacts under an
// output root.
//
// Materialize never returns an error: every failure is reported through the
// Result so a single bad page cannot stop a run.
type Materializer struct {
	root      string
	client    DocumentFetcher
	resolver  Resolver
	store     storage.Store
	extractor *extract.Extractor
	converter *extract.Converter
	logger    *slog.Logger
	pipeline  *Pipeline
}

// MaterializerOption configures a Materializer.
type MaterializerOption func(*Materializer)

// WithStore replaces the filesystem store.
func WithStore(s storage.Store) MaterializerOption {
	return func(m *Materializer) {
		m.store = s
	}
}

// WithExtractor replaces the content extractor.
func WithExtractor(e *extract.Extractor) MaterializerOption {
	return func(m *Materializer) {
		m.extractor = e
	}
}

// WithConverter replaces the Markdown converter.
func WithConverter(c *extract.Converter) MaterializerOption {
	return func(m *Materializer) {
		m.converter = c
	}
}

// WithResolver replaces how destinations are computed. The default
// sanitizes each title on its own, without collision handling.
func WithResolver(r Resolver) MaterializerOption {
	return func(m *Materializer) {
		m.resolver = r
	}
}

// WithMaterializerLogger sets the logger.
func WithMaterializerLogger(l *slog.Logger) MaterializerOption {
	return func(m *Materializer) {
		m.logger = l
	}
}

// NewMaterializer creates a Materializer writing under root and fetching
// pages with client.
func NewMaterializer(root string, client DocumentFetcher, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		root:      filepath.Clean(root),
		client:    client,
		resolver:  (*naming.Namer)(nil),
		store:     storage.NewFileStore(),
		extractor: extract.NewExtractor(extract.DefaultSelectors()),
		converter: extract.NewConverter(),
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.pipeline = m.build()
	return m
}

// WithNamer returns a copy of m that resolves destinations with n. The
// orchestrator builds n from the full catalog so colliding titles get
// distinct destinations.
func (m *Materializer) WithNamer(n *naming.Namer) *Materializer {
	c := *m
	c.resolver = n
	c.pipeline = c.build()
	return &c
}

// Root returns the output root.
func (m *Materializer) Root() string {
	return m.root
}

// Stages returns the stage names in execution order.
func (m *Materializer) Stages() []string {
	return m.pipeline.StageNames()
}

// Materialize ensures an artifact for entry exists.
//
//   - artifact already present: {Succeeded: true, RequestMade: false}
//   - destination cannot be prepared: {Succeeded: false, RequestMade: false}
//   - page request fails: {Succeeded: false, RequestMade: true}
//   - conversion or write fails: {Succeeded: false, RequestMade: true}
//   - artifact written: {Succeeded: true, RequestMade: true}
//
// A page without a recognizable content region is written as a placeholder
// document and counts as a success.
func (m *Materializer) Materialize(ctx context.Context, entry model.CatalogEntry) model.Result {
	job := NewJob(entry)
	_ = m.pipeline.Execute(ctx, job)
	res := job.Result()

	switch {
	case res.Outcome == model.OutcomeSkipped:
		m.logger.Debug("artifact exists, skipping", "title", entry.Title, "path", res.Destination.Path())
	case res.Succeeded && res.Placeholder:
		m.logger.Warn("no content region found, wrote placeholder", "title", entry.Title, "url", entry.URL)
	case res.Succeeded:
		if job.Extraction.TitleFromPage && job.Extraction.PageTitle != entry.Title {
			m.logger.Debug("page title differs from catalog title", "catalog", entry.Title, "page", job.Extraction.PageTitle)
		}
	default:
		m.logger.Warn("materialization failed",
			"title", entry.Title,
			"url", entry.URL,
			"outcome", res.Outcome.String(),
			"error", res.Err,
		)
	}
	return res
}

func (m *Materializer) build() *Pipeline {
	p := New(WithLogger(m.logger))
	p.AddStages(
		&resolveStage{root: m.root, resolver: m.resolver, store: m.store},
		&fetchStage{client: m.client},
		&extractStage{extractor: m.extractor},
		&convertStage{converter: m.converter},
		&persistStage{store: m.store},
	)
	return p
}
