package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/glimgeist/beforeiplay-scraper/internal/catalog"
	"github.com/glimgeist/beforeiplay-scraper/internal/extract"
	"github.com/glimgeist/beforeiplay-scraper/internal/fetch"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "beforeiplay"

	// DefaultBaseURL is the site origin.
	DefaultBaseURL = "https://beforeiplay.com"

	// DefaultIndexURL lists every item page of the site.
	DefaultIndexURL = DefaultBaseURL + "/index.php?title=Category:Games"

	// DefaultOutputDir is relative to the working directory.
	DefaultOutputDir = "scraped_games"

	// DefaultDelay is the courtesy delay between page requests.
	// One second keeps the load on a small community wiki negligible.
	DefaultDelay = 1 * time.Second

	// DefaultTimeout bounds each request.
	DefaultTimeout = fetch.DefaultTimeout

	// DefaultMaxBodySize limits how much of a response is read.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// DefaultMaxIndexPages disables catalog pagination: only the first
	// index page is read.
	DefaultMaxIndexPages = 1

	// DefaultLinkSelector selects item links on a MediaWiki category page.
	DefaultLinkSelector = catalog.DefaultLinkSelector

	// DefaultNextSelector selects candidate "next page" links.
	DefaultNextSelector = catalog.DefaultNextSelector

	// DefaultNextText is the link text of the "next page" link.
	DefaultNextText = catalog.DefaultNextText
)

// Config holds all options for a crawl run.
// It is populated from defaults, then the site file, then CLI flags, and is
// passed down explicitly rather than held in global state.
type Config struct {
	// IndexURL is the catalog index page.
	IndexURL string

	// OutputDir is the output root. Artifacts go to OutputDir/<bucket>/.
	OutputDir string

	// Limit caps how many entries are processed after filtering.
	// Zero means no limit.
	Limit int

	// Letter is the raw bucket filter from the user. Empty means all.
	Letter string

	// Delay is the courtesy delay between page requests.
	Delay time.Duration

	// RandomizeDelay draws each delay uniformly from [0.5, 1.5] x Delay.
	RandomizeDelay bool

	// Timeout bounds each request.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response size in bytes. Zero uses the default.
	MaxBodySize int64

	// MaxIndexPages is how many catalog index pages are followed.
	MaxIndexPages int

	// FrontMatter prepends YAML front matter to every artifact.
	FrontMatter bool

	// RespectRobots skips entries disallowed by the site's robots.txt.
	RespectRobots bool

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport selects the JSON run report.
	JSONReport bool

	// MarkdownReport selects the Markdown run report.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// DBDir is the directory of the run ledger database.
	DBDir string

	// SaveToDB records runs in the ledger. The ledger is never consulted
	// when deciding whether an entry is done.
	SaveToDB bool

	// ConfigFilePath is an explicit site file path.
	ConfigFilePath string

	// Site holds request and layout settings for the target site.
	Site Site
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		IndexURL:      DefaultIndexURL,
		OutputDir:     DefaultOutputDir,
		Delay:         DefaultDelay,
		Timeout:       DefaultTimeout,
		UserAgent:     fetch.DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		MaxIndexPages: DefaultMaxIndexPages,
		DBDir:         XDGDataDir(),
		SaveToDB:      true,
		Site:          DefaultSite(),
	}
}

// XDGDataDir returns the XDG data directory for the run ledger.
// On Linux: ~/.local/share/beforeiplay
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the site file.
// On Linux: ~/.config/beforeiplay
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// BaseURL returns the scheme and host of IndexURL, for example
// "https://beforeiplay.com". It is empty when IndexURL is invalid.
func (c *Config) BaseURL() string {
	u, err := url.Parse(c.IndexURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Validate checks the configuration and returns the first problem found.
//
// Design decision: We validate once after flag parsing, before any request
// is made, so a bad flag fails fast with a clear message.
func (c *Config) Validate() error {
	u, err := url.Parse(c.IndexURL)
	if err != nil || u.Host == "" {
		return ErrInvalidIndexURL
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return ErrInvalidIndexURL
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrEmptyOutputDir
	}

	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.MaxIndexPages < 1 {
		return ErrInvalidIndexPages
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// Selectors returns the extraction selectors for the site.
func (c *Config) Selectors() extract.Selectors {
	return c.Site.Selectors.Merge(extract.DefaultSelectors())
}
