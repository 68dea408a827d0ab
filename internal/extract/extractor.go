package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// UntitledPage is used as the heading when neither the page nor the catalog
// provides a title.
const UntitledPage = "Untitled"

// Selectors configures where content and titles are found.
type Selectors struct {
	// Content is tried in order; the first selector with a match wins.
	Content []string `yaml:"content,omitempty"`

	// Title is tried in order; the first non-empty text wins.
	Title []string `yaml:"title,omitempty"`

	// Noise is removed from the content region before conversion.
	Noise []string `yaml:"noise,omitempty"`
}

// DefaultSelectors returns selectors for MediaWiki article pages.
//
// The primary content region is the parser output inside the content text
// container. Some skins omit the inner wrapper, so the container itself is
// the fallback.
func DefaultSelectors() Selectors {
	return Selectors{
		Content: []string{
			"#mw-content-text > div.mw-parser-output",
			"#mw-content-text",
		},
		Title: []string{
			"h1#firstHeading span",
			"h1#firstHeading",
		},
		Noise: []string{
			".mw-editsection",
			"script",
			"style",
			"noscript",
		},
	}
}

// Merge returns s with empty fields filled from defaults.
func (s Selectors) Merge(defaults Selectors) Selectors {
	if len(s.Content) == 0 {
		s.Content = defaults.Content
	}
	if len(s.Title) == 0 {
		s.Title = defaults.Title
	}
	if s.Noise == nil {
		s.Noise = defaults.Noise
	}
	return s
}

// Extraction is the result of reading one page.
type Extraction struct {
	// PageTitle is the title to use for the document.
	PageTitle string

	// TitleFromPage is false when PageTitle came from the catalog fallback.
	TitleFromPage bool

	// Found is false when no content selector matched.
	Found bool

	// Selector is the content selector that matched.
	Selector string

	// HTML is the outer HTML of the content region with noise removed.
	HTML string
}

// Extractor reads titles and content regions from parsed pages.
type Extractor struct {
	selectors Selectors
}

// NewExtractor creates an Extractor. Empty selector lists fall back to
// DefaultSelectors.
func NewExtractor(selectors Selectors) *Extractor {
	return &Extractor{selectors: selectors.Merge(DefaultSelectors())}
}

// Extract reads doc. fallbackTitle is used when the page has no title.
// The returned error is non-nil only when the region cannot be serialized.
func (e *Extractor) Extract(doc *goquery.Document, fallbackTitle string) (Extraction, error) {
	ex := Extraction{}

	ex.PageTitle, ex.TitleFromPage = e.title(doc)
	if !ex.TitleFromPage {
		ex.PageTitle = strings.TrimSpace(fallbackTitle)
	}
	if ex.PageTitle == "" {
		ex.PageTitle = UntitledPage
	}

	for _, sel := range e.selectors.Content {
		region := doc.Find(sel).First()
		if region.Length() == 0 {
			continue
		}
		for _, noise := range e.selectors.Noise {
			region.Find(noise).Remove()
		}
		html, err := goquery.OuterHtml(region)
		if err != nil {
			return ex, err
		}
		ex.Found = true
		ex.Selector = sel
		ex.HTML = html
		break
	}

	return ex, nil
}

func (e *Extractor) title(doc *goquery.Document) (string, bool) {
	for _, sel := range e.selectors.Title {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t, true
		}
	}
	return "", false
}
