package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"

	"github.com/glimgeist/beforeiplay-scraper/internal/log"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent mimics a desktop browser. Some wikis serve a reduced
	// page or refuse requests from unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultAccept is sent with every request.
	DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// DefaultMaxBodySize caps how much of a response is read.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// DefaultRedirectLimit is the maximum number of redirects followed.
	DefaultRedirectLimit = 10
)

// Response is a fetched and decoded page.
type Response struct {
	// URL is the final URL after redirects.
	URL string

	StatusCode  int
	ContentType string

	// Body is the UTF-8 decoded body, truncated to the client's size limit.
	Body []byte

	// Truncated is true when the body hit the size limit.
	Truncated bool
}

// Client fetches pages over HTTP.
type Client struct {
	http        *resty.Client
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	userAgent     string
	timeout       time.Duration
	maxBodySize   int64
	headers       map[string]string
	cookie        string
	redirectLimit int
	logger        *slog.Logger
	transport     http.RoundTripper
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize sets the body size limit in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithHeaders adds custom request headers. They override the defaults.
func WithHeaders(h map[string]string) Option {
	return func(c *clientConfig) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithCookie sets a Cookie header sent with every request.
func WithCookie(cookie string) Option {
	return func(c *clientConfig) {
		c.cookie = cookie
	}
}

// WithRedirectLimit sets how many redirects are followed.
func WithRedirectLimit(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.redirectLimit = n
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// NewClient creates a Client.
//
// Design decision: The resty client is built once and shared for the whole
// run so connections to the single target host are reused between the
// index request and every page request.
func NewClient(opts ...Option) *Client {
	cfg := &clientConfig{
		userAgent:     DefaultUserAgent,
		timeout:       DefaultTimeout,
		maxBodySize:   DefaultMaxBodySize,
		headers:       make(map[string]string),
		redirectLimit: DefaultRedirectLimit,
		logger:        log.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := resty.New()
	if cfg.transport != nil {
		r.SetTransport(cfg.transport)
	}
	r.SetTimeout(cfg.timeout)
	r.SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.redirectLimit))
	r.SetHeader("User-Agent", cfg.userAgent)
	r.SetHeader("Accept", DefaultAccept)
	r.SetHeader("Accept-Language", "en-US,en;q=0.9")
	if cfg.cookie != "" {
		r.SetHeader("Cookie", cfg.cookie)
	}
	r.SetHeaders(cfg.headers)

	return &Client{
		http:        r,
		maxBodySize: cfg.maxBodySize,
		logger:      cfg.logger,
	}
}

// Get fetches rawURL and returns the decoded body. Non-2xx statuses are
// returned as an *Error of KindStatus.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, &Error{URL: rawURL, Kind: KindURL, Cause: err}
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: KindTransport, Cause: err}
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	c.logger.Debug("fetched",
		"url", rawURL,
		"status", resp.StatusCode(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, body, 4096)
		return nil, &Error{URL: rawURL, Kind: KindStatus, StatusCode: resp.StatusCode()}
	}

	contentType := resp.Header().Get("Content-Type")
	raw, err := io.ReadAll(io.LimitReader(body, c.maxBodySize+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: KindBody, Cause: err}
	}
	truncated := int64(len(raw)) > c.maxBodySize
	if truncated {
		raw = raw[:c.maxBodySize]
		c.logger.Warn("response body truncated", "url", rawURL, "limit", c.maxBodySize)
	}

	decoded, err := decode(raw, contentType)
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: KindBody, Cause: err}
	}

	finalURL := rawURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return &Response{
		URL:         finalURL,
		StatusCode:  resp.StatusCode(),
		ContentType: contentType,
		Body:        decoded,
		Truncated:   truncated,
	}, nil
}

// Document fetches rawURL and parses it as HTML.
func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return Parse(resp.URL, resp.Body)
}

// Parse parses an HTML body. The document URL is set to pageURL so relative
// links can be resolved by callers.
func Parse(pageURL string, body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{URL: pageURL, Kind: KindParse, Cause: err}
	}
	if u, err := url.Parse(pageURL); err == nil {
		doc.Url = u
	}
	return doc, nil
}

// decode converts body to UTF-8 using the Content-Type charset, a <meta>
// declaration, or content sniffing, in that order.
func decode(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset in %q: %w", contentType, err)
	}
	return io.ReadAll(r)
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
