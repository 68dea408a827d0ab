package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

const articleHTML = `<html><body>
<h1 id="firstHeading"><span>Foo!</span></h1>
<div id="mw-content-text"><div class="mw-parser-output">
<h2>Gameplay<span class="mw-editsection">[edit]</span></h2>
<p>Hello <a href="/index.php?title=Bar">Bar</a></p>
<script>alert(1)</script>
</div></div>
</body></html>`

func TestExtractorExtract(t *testing.T) {
	t.Parallel()

	t.Run("primary region", func(t *testing.T) {
		t.Parallel()
		ex, err := NewExtractor(Selectors{}).Extract(parse(t, articleHTML), "catalog title")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ex.Found || ex.Selector != "#mw-content-text > div.mw-parser-output" {
			t.Errorf("expected primary selector, got found=%v selector=%q", ex.Found, ex.Selector)
		}
		if ex.PageTitle != "Foo!" || !ex.TitleFromPage {
			t.Errorf("expected page title Foo!, got %q (fromPage=%v)", ex.PageTitle, ex.TitleFromPage)
		}
		if strings.Contains(ex.HTML, "[edit]") || strings.Contains(ex.HTML, "alert") {
			t.Errorf("expected noise to be removed, got %q", ex.HTML)
		}
		if !strings.Contains(ex.HTML, "Hello") {
			t.Errorf("expected content, got %q", ex.HTML)
		}
	})

	t.Run("fallback region", func(t *testing.T) {
		t.Parallel()
		html := `<html><body><h1 id="firstHeading">Plain</h1><div id="mw-content-text"><p>Hi</p></div></body></html>`
		ex, err := NewExtractor(Selectors{}).Extract(parse(t, html), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ex.Found || ex.Selector != "#mw-content-text" {
			t.Errorf("expected fallback selector, got found=%v selector=%q", ex.Found, ex.Selector)
		}
		if ex.PageTitle != "Plain" {
			t.Errorf("expected heading text as title, got %q", ex.PageTitle)
		}
	})

	t.Run("no region uses catalog title", func(t *testing.T) {
		t.Parallel()
		ex, err := NewExtractor(Selectors{}).Extract(parse(t, `<html><body><p>nothing</p></body></html>`), " Catalog Title ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := Extraction{PageTitle: "Catalog Title"}
		if diff := cmp.Diff(want, ex); diff != "" {
			t.Errorf("extraction mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no title at all", func(t *testing.T) {
		t.Parallel()
		ex, _ := NewExtractor(Selectors{}).Extract(parse(t, `<html></html>`), "")
		if ex.PageTitle != UntitledPage {
			t.Errorf("expected %q, got %q", UntitledPage, ex.PageTitle)
		}
	})

	t.Run("custom selectors", func(t *testing.T) {
		t.Parallel()
		html := `<html><body><h1 class="t">Custom</h1><article><p>Body</p><aside>ad</aside></article></body></html>`
		ex, _ := NewExtractor(Selectors{
			Content: []string{"article"},
			Title:   []string{"h1.t"},
			Noise:   []string{"aside"},
		}).Extract(parse(t, html), "")
		if !ex.Found || ex.PageTitle != "Custom" || strings.Contains(ex.HTML, "ad") {
			t.Errorf("unexpected extraction %+v", ex)
		}
	})
}

func TestSelectorsMerge(t *testing.T) {
	t.Parallel()

	got := Selectors{Content: []string{"main"}, Noise: []string{}}.Merge(DefaultSelectors())
	want := Selectors{
		Content: []string{"main"},
		Title:   DefaultSelectors().Title,
		Noise:   []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestConverterConvert(t *testing.T) {
	t.Parallel()

	t.Run("content region", func(t *testing.T) {
		t.Parallel()
		ex, err := NewExtractor(Selectors{}).Extract(parse(t, articleHTML), "")
		if err != nil {
			t.Fatal(err)
		}
		out, err := NewConverter(WithDomain("https://beforeiplay.com/")).Convert(ex, Meta{Source: "https://beforeiplay.com/Foo"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		md := string(out)
		if !strings.Contains(md, "## Gameplay") {
			t.Errorf("expected ATX heading, got %q", md)
		}
		if !strings.Contains(md, "Hello") {
			t.Errorf("expected body text, got %q", md)
		}
		if !strings.Contains(md, "https://beforeiplay.com/index.php?title=Bar") {
			t.Errorf("expected absolute link, got %q", md)
		}
		if strings.HasPrefix(md, "---") {
			t.Error("expected no front matter by default")
		}
	})

	t.Run("placeholder", func(t *testing.T) {
		t.Parallel()
		out, err := NewConverter().Convert(Extraction{PageTitle: "Foo"}, Meta{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "# Foo\n\nContent could not be extracted.\n"
		if string(out) != want {
			t.Errorf("expected %q, got %q", want, out)
		}
	})

	t.Run("front matter", func(t *testing.T) {
		t.Parallel()
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		c := NewConverter(WithFrontMatter(true), WithClock(func() time.Time { return fixed }))
		out, err := c.Convert(Extraction{PageTitle: "Foo"}, Meta{CatalogTitle: "Foo", Source: "https://example.com/Foo"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		md := string(out)
		for _, want := range []string{
			"---\n",
			"title: Foo\n",
			"https://example.com/Foo",
			"fetchedAt:",
			"2024-05-01T12:00:00Z",
			"placeholder: true\n",
			"# Foo\n",
		} {
			if !strings.Contains(md, want) {
				t.Errorf("expected %q in output, got %q", want, md)
			}
		}
		if !strings.HasPrefix(md, "---\n") {
			t.Errorf("expected front matter first, got %q", md)
		}
	})
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()

	if got := Placeholder("Zork"); got != "# Zork\n\nContent could not be extracted." {
		t.Errorf("unexpected placeholder %q", got)
	}
}
