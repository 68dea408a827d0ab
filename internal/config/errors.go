package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and are the only failures
// that make the command exit with a non-zero status.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidIndexURL is returned when the catalog index URL is not an
	// absolute http or https URL.
	ErrInvalidIndexURL = errors.New("invalid index URL: must be an absolute http or https URL")

	// ErrEmptyOutputDir is returned when no output directory is configured.
	ErrEmptyOutputDir = errors.New("invalid output directory: must not be empty")

	// ErrInvalidLimit is returned when the item limit is negative.
	// Use 0 for no limit.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrInvalidDelay is returned when the courtesy delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidIndexPages is returned when the index page budget is below one.
	ErrInvalidIndexPages = errors.New("invalid max index pages: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the site file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
