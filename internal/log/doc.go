// Package log provides the structured logger used across the scraper,
// built on top of the standard slog package.
//
// The RedactingHandler wraps any slog.Handler and masks values that should
// not end up in logs that get pasted into bug reports:
//   - request headers such as Cookie and Authorization
//   - credential-looking query parameters inside logged URLs
//   - any extra header names configured for a site
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, log.Options{Verbose: true})
//	logger.Info("fetching page", "url", pageURL, "cookie", cookie)
//	// cookie=***REDACTED***
package log
