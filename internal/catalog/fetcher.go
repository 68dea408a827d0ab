package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/glimgeist/beforeiplay-scraper/internal/log"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
	"github.com/glimgeist/beforeiplay-scraper/internal/ratelimit"
)

const (
	// DefaultLinkSelector selects item anchors on a MediaWiki category page.
	DefaultLinkSelector = "div.mw-category-group li a"

	// DefaultNextSelector selects candidate pagination anchors.
	DefaultNextSelector = "#mw-pages > a"

	// DefaultNextText is the text of the pagination anchor to follow.
	DefaultNextText = "next page"
)

// DocumentFetcher fetches and parses one HTML page.
type DocumentFetcher interface {
	Document(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Fetcher lists catalog entries.
type Fetcher struct {
	client       DocumentFetcher
	indexURL     string
	linkSelector string
	nextSelector string
	nextText     string
	maxPages     int
	waiter       ratelimit.Waiter
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLinkSelector overrides the item anchor selector.
func WithLinkSelector(sel string) Option {
	return func(f *Fetcher) {
		if sel != "" {
			f.linkSelector = sel
		}
	}
}

// WithNextLink overrides how the pagination link is found.
func WithNextLink(selector, text string) Option {
	return func(f *Fetcher) {
		if selector != "" {
			f.nextSelector = selector
		}
		if text != "" {
			f.nextText = text
		}
	}
}

// WithMaxPages sets how many index pages are read. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		if n >= 1 {
			f.maxPages = n
		}
	}
}

// WithWaiter sets the courtesy delay used between index pages.
func WithWaiter(w ratelimit.Waiter) Option {
	return func(f *Fetcher) {
		f.waiter = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher for the index at indexURL.
func NewFetcher(client DocumentFetcher, indexURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       client,
		indexURL:     indexURL,
		linkSelector: DefaultLinkSelector,
		nextSelector: DefaultNextSelector,
		nextText:     DefaultNextText,
		maxPages:     1,
		logger:       log.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// List returns every entry on the index, in catalog order, without
// deduplication.
//
// A failure on the first index page is returned; callers treat it as an
// empty catalog. A failure on a later page ends pagination and returns the
// entries gathered so far.
func (f *Fetcher) List(ctx context.Context) ([]model.CatalogEntry, error) {
	entries := make([]model.CatalogEntry, 0)
	visited := make(map[string]bool)
	pageURL := f.indexURL

	for page := 1; pageURL != "" && page <= f.maxPages; page++ {
		if visited[pageURL] {
			break
		}
		visited[pageURL] = true

		if page > 1 && f.waiter != nil {
			f.waiter.Wait(ctx)
			if ctx.Err() != nil {
				return entries, nil
			}
		}

		doc, err := f.client.Document(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("list catalog %s: %w", pageURL, err)
			}
			f.logger.Warn("stopping catalog pagination", "page", page, "url", pageURL, "error", err)
			break
		}

		found := ParseEntries(doc, pageURL, f.linkSelector)
		f.logger.Debug("catalog page parsed", "page", page, "url", pageURL, "entries", len(found))
		entries = append(entries, found...)

		pageURL = f.nextPage(doc, pageURL)
	}

	return entries, nil
}

// ParseEntries extracts entries from a parsed index page. Relative hrefs are
// resolved against the document URL, or pageURL when the document has none.
// Anchors without an href are skipped.
func ParseEntries(doc *goquery.Document, pageURL, selector string) []model.CatalogEntry {
	base := documentBase(doc, pageURL)
	entries := make([]model.CatalogEntry, 0)

	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		abs := resolve(base, href)
		if abs == "" {
			return
		}
		entries = append(entries, model.CatalogEntry{
			URL:   abs,
			Title: strings.TrimSpace(a.Text()),
		})
	})
	return entries
}

func (f *Fetcher) nextPage(doc *goquery.Document, pageURL string) string {
	base := documentBase(doc, pageURL)
	next := ""
	doc.Find(f.nextSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(a.Text()), f.nextText) {
			return true
		}
		if href, ok := a.Attr("href"); ok {
			next = resolve(base, href)
		}
		return false
	})
	return next
}

func documentBase(doc *goquery.Document, pageURL string) *url.URL {
	if doc != nil && doc.Url != nil {
		return doc.Url
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return &url.URL{}
	}
	return u
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
