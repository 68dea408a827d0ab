// Package extract locates the primary content region of a wiki page and
// converts it to Markdown.
//
// Extraction and conversion are separate steps. The Extractor only reads the
// parsed document: it finds the page title and the content region, and strips
// editing chrome such as "[edit]" links. The Converter turns the region into
// Markdown with ATX headings, or produces a placeholder document when no
// region was found.
package extract
