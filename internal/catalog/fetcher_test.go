package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/glimgeist/beforeiplay-scraper/internal/fetch"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
	"github.com/glimgeist/beforeiplay-scraper/internal/ratelimit"
)

func categoryPage(next string, titles ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="mw-pages">`)
	b.WriteString(`(previous page) `)
	if next != "" {
		fmt.Fprintf(&b, `(<a href="%s">next page</a>)`, next)
	}
	b.WriteString(`<div class="mw-category"><div class="mw-category-group"><h3>A</h3><ul>`)
	for _, title := range titles {
		fmt.Fprintf(&b, `<li><a href="/index.php?title=%s">%s</a></li>`, strings.ReplaceAll(title, " ", "_"), title)
	}
	b.WriteString(`<li><a>no href</a></li></ul></div></div></div></body></html>`)
	return b.String()
}

func TestFetcherList(t *testing.T) {
	t.Parallel()

	t.Run("single page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(categoryPage("", "Alpha", "Beta Game", "Alpha")))
		}))
		defer srv.Close()

		f := NewFetcher(fetch.NewClient(), srv.URL+"/index.php?title=Category:Games")
		got, err := f.List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.CatalogEntry{
			{URL: srv.URL + "/index.php?title=Alpha", Title: "Alpha"},
			{URL: srv.URL + "/index.php?title=Beta_Game", Title: "Beta Game"},
			{URL: srv.URL + "/index.php?title=Alpha", Title: "Alpha"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("entries mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("pagination is opt-in", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			if r.URL.Query().Get("pagefrom") == "" {
				_, _ = w.Write([]byte(categoryPage("/index.php?title=Category:Games&pagefrom=C", "A1")))
				return
			}
			_, _ = w.Write([]byte(categoryPage("", "C1")))
		}))
		defer srv.Close()

		index := srv.URL + "/index.php?title=Category:Games"

		got, err := NewFetcher(fetch.NewClient(), index).List(context.Background())
		if err != nil || len(got) != 1 {
			t.Fatalf("expected 1 entry from the first page, got %d (%v)", len(got), err)
		}

		waiter := &ratelimit.Counter{}
		got, err = NewFetcher(fetch.NewClient(), index, WithMaxPages(5), WithWaiter(waiter)).List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[1].Title != "C1" {
			t.Errorf("expected entries from both pages, got %+v", got)
		}
		if waiter.Calls != 1 {
			t.Errorf("expected one delay between index pages, got %d", waiter.Calls)
		}
		if n := requests.Load(); n != 3 {
			t.Errorf("expected 3 index requests in total, got %d", n)
		}
	})

	t.Run("first page failure is returned", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		got, err := NewFetcher(fetch.NewClient(), srv.URL).List(context.Background())
		if !errors.Is(err, fetch.ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no entries, got %d", len(got))
		}
	})

	t.Run("later page failure keeps earlier entries", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("pagefrom") != "" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(categoryPage("/index.php?pagefrom=Z", "A1", "A2")))
		}))
		defer srv.Close()

		got, err := NewFetcher(fetch.NewClient(), srv.URL+"/index.php", WithMaxPages(3)).List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 entries, got %d", len(got))
		}
	})

	t.Run("empty category", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><body><p>No pages</p></body></html>`))
		}))
		defer srv.Close()

		got, err := NewFetcher(fetch.NewClient(), srv.URL).List(context.Background())
		if err != nil || len(got) != 0 {
			t.Errorf("expected empty catalog, got %d entries (%v)", len(got), err)
		}
	})
}

func TestParseEntries(t *testing.T) {
	t.Parallel()

	html := `<div class="mw-category-group"><ul>
<li><a href="https://other.example/abs">Absolute</a></li>
<li><a href="rel">  Relative  </a></li>
<li><a href="">Empty</a></li>
</ul></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	got := ParseEntries(doc, "https://beforeiplay.com/wiki/index", DefaultLinkSelector)
	want := []model.CatalogEntry{
		{URL: "https://other.example/abs", Title: "Absolute"},
		{URL: "https://beforeiplay.com/wiki/rel", Title: "Relative"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}
