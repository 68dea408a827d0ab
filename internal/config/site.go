package config

import "github.com/glimgeist/beforeiplay-scraper/internal/extract"

// Catalog describes how item links are found on the index page.
type Catalog struct {
	// LinkSelector selects item anchors.
	LinkSelector string `yaml:"linkSelector,omitempty"`

	// NextSelector selects candidate pagination anchors.
	NextSelector string `yaml:"nextSelector,omitempty"`

	// NextText is the text of the pagination anchor to follow.
	NextText string `yaml:"nextText,omitempty"`
}

// Site holds request and layout settings for the target site.
type Site struct {
	// Cookie is sent with every request. Format: "name=value; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Catalog configures link discovery.
	Catalog Catalog `yaml:"catalog,omitempty"`

	// Selectors configures content extraction.
	Selectors extract.Selectors `yaml:"selectors,omitempty"`
}

// DefaultSite returns the settings for a MediaWiki category listing.
func DefaultSite() Site {
	return Site{
		Catalog: Catalog{
			LinkSelector: DefaultLinkSelector,
			NextSelector: DefaultNextSelector,
			NextText:     DefaultNextText,
		},
		Selectors: extract.DefaultSelectors(),
	}
}

// merge overlays the non-empty fields of other onto s.
func (s Site) merge(other Site) Site {
	if other.Cookie != "" {
		s.Cookie = other.Cookie
	}
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(s.Headers)+len(other.Headers))
		for k, v := range s.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		s.Headers = headers
	}
	if other.Catalog.LinkSelector != "" {
		s.Catalog.LinkSelector = other.Catalog.LinkSelector
	}
	if other.Catalog.NextSelector != "" {
		s.Catalog.NextSelector = other.Catalog.NextSelector
	}
	if other.Catalog.NextText != "" {
		s.Catalog.NextText = other.Catalog.NextText
	}
	s.Selectors = other.Selectors.Merge(s.Selectors)
	return s
}

// HeaderNames returns the names of the custom headers, for log redaction.
func (s Site) HeaderNames() []string {
	names := make([]string, 0, len(s.Headers))
	for k := range s.Headers {
		names = append(names, k)
	}
	return names
}
