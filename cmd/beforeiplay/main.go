// Package main provides the entry point for the beforeiplay CLI.
//
// beforeiplay mirrors the game articles of the BeforeIPlay wiki into a tree
// of Markdown files, one per game, grouped by first letter. Runs are
// resumable: games whose file already exists are skipped without a request.
//
// Usage:
//
//	beforeiplay scrape
//	beforeiplay scrape --letter F --limit 10
//	beforeiplay history
//
// See --help for all available options.
package main

// main is the entry point for beforeiplay.
func main() {
	Execute()
}
