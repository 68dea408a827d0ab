// Package robots applies a site's robots.txt to catalog entries.
//
// Checking robots.txt is opt-in. When enabled, entries whose URL is
// disallowed for the scraper's agent are dropped before filtering and
// limiting, so they never count towards --limit.
package robots
