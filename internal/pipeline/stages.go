package pipeline

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/glimgeist/beforeiplay-scraper/internal/extract"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
	"github.com/glimgeist/beforeiplay-scraper/internal/storage"
)

// DocumentFetcher fetches and parses a page.
type DocumentFetcher interface {
	Document(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Resolver maps an entry to its destination under root.
type Resolver interface {
	Destination(root string, entry model.CatalogEntry) model.Destination
}

// resolveStage computes the destination, prepares the bucket directory and
// finishes the job when the artifact already exists.
type resolveStage struct {
	root     string
	resolver Resolver
	store    storage.Store
}

func (s *resolveStage) Name() string { return "resolve" }

func (s *resolveStage) Do(_ context.Context, job *Job) error {
	job.Destination = s.resolver.Destination(s.root, job.Entry)

	if err := s.store.EnsureDir(job.Destination.Dir()); err != nil {
		job.Fail(model.OutcomeLocalFailed, err)
		return err
	}

	exists, err := s.store.Exists(job.Destination.Path())
	if err != nil {
		job.Fail(model.OutcomeLocalFailed, err)
		return err
	}
	if exists {
		job.Finish(model.OutcomeSkipped)
	}
	return nil
}

// fetchStage requests and parses the page.
type fetchStage struct {
	client DocumentFetcher
}

func (s *fetchStage) Name() string { return "fetch" }

func (s *fetchStage) Do(ctx context.Context, job *Job) error {
	job.MarkRequest()
	doc, err := s.client.Document(ctx, job.Entry.URL)
	if err != nil {
		job.Fail(model.OutcomeFetchFailed, err)
		return err
	}
	job.Document = doc
	return nil
}

// extractStage locates the page title and content region.
type extractStage struct {
	extractor *extract.Extractor
}

func (s *extractStage) Name() string { return "extract" }

func (s *extractStage) Do(_ context.Context, job *Job) error {
	ex, err := s.extractor.Extract(job.Document, job.Entry.Title)
	job.Extraction = ex
	if err != nil {
		err = fmt.Errorf("extract %s: %w", job.Entry.URL, err)
		job.Fail(model.OutcomeConvertFailed, err)
		return err
	}
	return nil
}

// convertStage renders the extraction as Markdown.
type convertStage struct {
	converter *extract.Converter
}

func (s *convertStage) Name() string { return "convert" }

func (s *convertStage) Do(_ context.Context, job *Job) error {
	md, err := s.converter.Convert(job.Extraction, extract.Meta{
		Title:        job.Extraction.PageTitle,
		CatalogTitle: job.Entry.Title,
		Source:       job.Entry.URL,
	})
	if err != nil {
		job.Fail(model.OutcomeConvertFailed, err)
		return err
	}
	job.Markdown = md
	return nil
}

// persistStage writes the artifact.
type persistStage struct {
	store storage.Store
}

func (s *persistStage) Name() string { return "persist" }

func (s *persistStage) Do(_ context.Context, job *Job) error {
	if err := s.store.WriteAtomic(job.Destination.Path(), job.Markdown); err != nil {
		job.Fail(model.OutcomeWriteFailed, err)
		return err
	}
	job.Finish(model.OutcomeWritten)
	return nil
}
