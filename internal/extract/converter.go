package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/nao1215/markdown"
	"gopkg.in/yaml.v3"
)

// PlaceholderText is the body of the document written when a page has no
// recognizable content region.
const PlaceholderText = "Content could not be extracted."

// Meta describes the page being converted. It is used for the placeholder
// heading and for optional front matter.
type Meta struct {
	Title        string
	CatalogTitle string
	Source       string
}

// frontMatter is serialized as YAML at the top of a document.
type frontMatter struct {
	Title        string `yaml:"title"`
	CatalogTitle string `yaml:"catalogTitle,omitempty"`
	Source       string `yaml:"source"`
	FetchedAt    string `yaml:"fetchedAt"`
	Placeholder  bool   `yaml:"placeholder,omitempty"`
}

// Converter renders extractions as Markdown.
type Converter struct {
	domain      string
	frontMatter bool
	now         func() time.Time
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithDomain sets the site origin (for example "https://beforeiplay.com")
// used to turn relative links and image sources into absolute ones.
func WithDomain(domain string) ConverterOption {
	return func(c *Converter) {
		c.domain = strings.TrimRight(domain, "/")
	}
}

// WithFrontMatter prepends a YAML front matter block to every document.
func WithFrontMatter(enabled bool) ConverterOption {
	return func(c *Converter) {
		c.frontMatter = enabled
	}
}

// WithClock overrides the time source for front matter timestamps.
func WithClock(now func() time.Time) ConverterOption {
	return func(c *Converter) {
		c.now = now
	}
}

// NewConverter creates a Converter.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert renders ex. When ex.Found is false the placeholder document is
// returned and the conversion cannot fail.
func (c *Converter) Convert(ex Extraction, meta Meta) ([]byte, error) {
	var body string
	if ex.Found {
		var opts []converter.ConvertOptionFunc
		if c.domain != "" {
			opts = append(opts, converter.WithDomain(c.domain))
		}
		md, err := htmltomarkdown.ConvertString(ex.HTML, opts...)
		if err != nil {
			return nil, fmt.Errorf("convert %s to markdown: %w", meta.Source, err)
		}
		body = md
	} else {
		body = Placeholder(ex.PageTitle)
	}

	var buf bytes.Buffer
	if c.frontMatter {
		fm := frontMatter{
			Title:        ex.PageTitle,
			CatalogTitle: meta.CatalogTitle,
			Source:       meta.Source,
			FetchedAt:    c.now().UTC().Format(time.RFC3339),
			Placeholder:  !ex.Found,
		}
		out, err := yaml.Marshal(fm)
		if err != nil {
			return nil, fmt.Errorf("marshal front matter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(out)
		buf.WriteString("---\n\n")
	}
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Placeholder returns the document written for a page without content:
// a level-one heading with the title followed by PlaceholderText.
func Placeholder(title string) string {
	md := markdown.NewMarkdown(io.Discard)
	md.H1(title).
		PlainText("").
		PlainText(PlaceholderText)
	return md.String()
}
