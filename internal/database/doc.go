// Package database provides the SQLite run ledger for the scraper.
//
// The ledger stores one row per crawl run and one row per processed catalog
// entry, so past runs can be listed and compared with the history command.
//
// Design decision: The ledger is write-only from the crawler's point of
// view. Whether an entry still needs work is decided by the presence of its
// artifact on disk, never by the ledger, so deleting the database or running
// with --no-db changes nothing about which pages are fetched.
//
// We use SQLite (via modernc.org/sqlite) because the database is a single
// CGO-free file that needs no server.
package database
