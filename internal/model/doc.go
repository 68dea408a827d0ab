// Package model defines the data structures shared by the crawl pipeline.
//
// This package contains the following main types:
//   - CatalogEntry: One item discovered on the catalog index page
//   - Destination: Where the Markdown artifact for an entry lives on disk
//   - Result: The outcome of materializing a single entry
//   - RunTally: Aggregated counts and per-item records for one run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The catalog, pipeline, database, and report packages all
// exchange these types, so centralizing them prevents import cycles.
//
// The models are serializable to JSON for report output and the run ledger.
package model
