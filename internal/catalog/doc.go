// Package catalog discovers the item pages listed on the site's index.
//
// The index is a MediaWiki category page. Every anchor inside a category
// group becomes one CatalogEntry, in document order. The href is resolved
// against the index URL and the link text becomes the entry title.
//
// By default only the first index page is read. Large categories are split
// by MediaWiki into several pages linked with "next page"; following them is
// opt-in through WithMaxPages, and the courtesy delay applies between index
// requests as it does between item requests.
package catalog
