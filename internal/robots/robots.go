package robots

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/glimgeist/beforeiplay-scraper/internal/fetch"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// DefaultAgent is the product token matched against robots.txt groups.
const DefaultAgent = "beforeiplay-scraper"

// Getter is the part of fetch.Client the checker needs.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Checker answers whether a URL may be fetched.
type Checker struct {
	data  *robotstxt.RobotsData
	agent string
}

// Load fetches <origin>/robots.txt. A missing file (4xx) allows everything
// and a server error (5xx) disallows everything, following the usual
// robots.txt conventions. Transport failures are returned to the caller.
func Load(ctx context.Context, g Getter, origin, agent string) (*Checker, error) {
	if agent == "" {
		agent = DefaultAgent
	}
	robotsURL, err := url.JoinPath(origin, "robots.txt")
	if err != nil {
		return nil, fmt.Errorf("build robots.txt URL: %w", err)
	}

	status, body := 200, []byte(nil)
	resp, err := g.Get(ctx, robotsURL)
	if err != nil {
		var fe *fetch.Error
		if !errors.As(err, &fe) || fe.Kind != fetch.KindStatus {
			return nil, fmt.Errorf("fetch robots.txt: %w", err)
		}
		status = fe.StatusCode
	} else {
		body = resp.Body
	}

	data, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return &Checker{data: data, agent: agent}, nil
}

// Allowed reports whether rawURL may be fetched. Unparseable URLs are allowed;
// the fetch itself will fail and be reported.
func (c *Checker) Allowed(rawURL string) bool {
	if c == nil || c.data == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	return c.data.TestAgent(u.RequestURI(), c.agent)
}

// Filter returns the entries that may be fetched, in order, and the number
// dropped.
func (c *Checker) Filter(entries []model.CatalogEntry) ([]model.CatalogEntry, int) {
	kept := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if c.Allowed(e.URL) {
			kept = append(kept, e)
		}
	}
	return kept, len(entries) - len(kept)
}
