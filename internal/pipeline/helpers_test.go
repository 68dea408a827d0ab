package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glimgeist/beforeiplay-scraper/internal/fetch"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// fakeWiki serves article pages by title and counts requests per title.
type fakeWiki struct {
	srv   *httptest.Server
	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

func newFakeWiki(t *testing.T) *fakeWiki {
	t.Helper()
	w := &fakeWiki{pages: make(map[string]string), hits: make(map[string]int)}
	w.srv = httptest.NewServer(http.HandlerFunc(w.serve))
	t.Cleanup(w.srv.Close)
	return w
}

func (w *fakeWiki) serve(rw http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	w.mu.Lock()
	w.hits[title]++
	body, ok := w.pages[title]
	w.mu.Unlock()
	if !ok {
		http.NotFound(rw, r)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = rw.Write([]byte(body))
}

// article registers a page with a heading and a parser-output region.
func (w *fakeWiki) article(title, body string) model.CatalogEntry {
	html := fmt.Sprintf(`<html><body><h1 id="firstHeading"><span>%s</span></h1>
<div id="mw-content-text"><div class="mw-parser-output"><p>%s</p></div></div></body></html>`, title, body)
	return w.raw(title, html)
}

// raw registers a page with arbitrary HTML.
func (w *fakeWiki) raw(title, html string) model.CatalogEntry {
	key := strings.ReplaceAll(title, " ", "_")
	w.mu.Lock()
	w.pages[key] = html
	w.mu.Unlock()
	return w.entry(title)
}

// entry returns a catalog entry for title without registering a page.
func (w *fakeWiki) entry(title string) model.CatalogEntry {
	key := strings.ReplaceAll(title, " ", "_")
	return model.CatalogEntry{URL: w.srv.URL + "/index.php?title=" + key, Title: title}
}

func (w *fakeWiki) totalHits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, h := range w.hits {
		n += h
	}
	return n
}

func (w *fakeWiki) client() *fetch.Client {
	return fetch.NewClient(fetch.WithTimeout(5 * time.Second))
}

// staticLister returns a fixed catalog.
type staticLister struct {
	entries []model.CatalogEntry
	err     error
}

func (l staticLister) List(context.Context) ([]model.CatalogEntry, error) {
	return l.entries, l.err
}

// recordingObserver keeps the events it receives.
type recordingObserver struct {
	started  []string
	finished []model.ItemRecord
	waits    int
}

func (o *recordingObserver) RunStarted(int, int) {}

func (o *recordingObserver) ItemStarted(_, _ int, e model.CatalogEntry) {
	o.started = append(o.started, e.Title)
}

func (o *recordingObserver) ItemFinished(rec model.ItemRecord) {
	o.finished = append(o.finished, rec)
}

func (o *recordingObserver) Waited(time.Duration) {
	o.waits++
}
