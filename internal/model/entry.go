package model

import "path/filepath"

// CatalogEntry is a single item discovered on the catalog index.
// Entries are produced in catalog order and are not deduplicated.
type CatalogEntry struct {
	// URL is the absolute address of the item page.
	URL string `json:"url"`

	// Title is the human-visible link text from the catalog.
	// It is untrusted input and may be empty.
	Title string `json:"title"`
}

// Destination is the on-disk location of the Markdown artifact for an entry.
// It is fully determined by the output root and the entry title, so it can be
// computed before any page request is made.
type Destination struct {
	// Root is the output root directory of the run.
	Root string `json:"root"`

	// Bucket is the first-character partition ("0-9", "A".."Z" or "_").
	Bucket string `json:"bucket"`

	// Identifier is the sanitized file stem.
	Identifier string `json:"identifier"`
}

// MarkdownExt is the file extension of every artifact.
const MarkdownExt = ".md"

// Dir returns the bucket directory.
func (d Destination) Dir() string {
	return filepath.Join(d.Root, d.Bucket)
}

// File returns the artifact file name.
func (d Destination) File() string {
	return d.Identifier + MarkdownExt
}

// Path returns the full artifact path.
func (d Destination) Path() string {
	return filepath.Join(d.Dir(), d.File())
}
