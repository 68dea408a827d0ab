// Package pipeline runs catalog entries through fetch, extract, convert and
// persist stages, and drives a whole crawl run.
//
// A Materializer turns one CatalogEntry into a Markdown artifact. It is a
// Pipeline of Stages executed in a fixed order on a Job:
//
//	resolve -> fetch -> extract -> convert -> persist
//
// The resolve stage computes the destination and short-circuits the job when
// the artifact already exists, before any request is made. That ordering is
// what makes runs resumable.
//
// The Orchestrator lists the catalog, applies the robots, letter and limit
// filters, materializes entries one at a time, and waits between entries only
// when a request was actually made.
//
// Design decision: Stages are separate values rather than one function so
// that a future runner could overlap the network-bound fetch of one entry
// with the persist of another without changing the stage contracts. Runs are
// sequential today.
package pipeline
