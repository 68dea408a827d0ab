package pipeline

import (
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
	"github.com/glimgeist/beforeiplay-scraper/internal/naming"
)

// FilterByBucket keeps the entries whose title falls in bucket, in order.
// An empty bucket keeps everything.
//
// The bucket is computed from the title with the same function used for the
// destination path, so a filtered run writes only into that bucket directory.
func FilterByBucket(entries []model.CatalogEntry, bucket naming.Bucket) []model.CatalogEntry {
	if bucket == "" {
		return entries
	}
	kept := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if naming.BucketOfTitle(e.Title) == bucket {
			kept = append(kept, e)
		}
	}
	return kept
}

// Limit returns at most n entries. Zero or negative n means no limit.
func Limit(entries []model.CatalogEntry, n int) []model.CatalogEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
