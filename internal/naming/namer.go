package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// suffixLen is the number of hex digits of the URL digest appended to a
// colliding identifier.
const suffixLen = 8

// Namer assigns identifiers to catalog entries and resolves collisions.
//
// Two distinct entries whose titles sanitize to the same Identifier would
// otherwise share one destination, and the second would be silently reported
// as already done. Namer assigns the plain Identifier to the first entry in
// catalog order and gives every later entry with a different URL a
// deterministic suffix derived from its URL. Entries repeating the same URL
// share the plain destination.
//
// A Namer must be built from the full catalog, before filtering or limiting,
// so the assignment does not depend on which subset a run processes.
type Namer struct {
	byURL      map[string]string
	collisions int
}

// NewNamer builds a Namer for the catalog in order.
func NewNamer(entries []model.CatalogEntry) *Namer {
	n := &Namer{byURL: make(map[string]string, len(entries))}
	owners := make(map[string]string, len(entries))

	for _, e := range entries {
		if _, done := n.byURL[e.URL]; done {
			continue
		}
		id := Sanitize(e.Title)
		owner, taken := owners[id]
		if taken && owner != e.URL {
			id = disambiguate(id, e.URL)
			n.collisions++
		}
		owners[id] = e.URL
		n.byURL[e.URL] = id
	}
	return n
}

// Identifier returns the identifier for the entry. Entries the Namer has not
// seen fall back to Sanitize(entry.Title).
func (n *Namer) Identifier(entry model.CatalogEntry) string {
	if n != nil {
		if id, ok := n.byURL[entry.URL]; ok {
			return id
		}
	}
	return Sanitize(entry.Title)
}

// Destination returns the artifact location for the entry under root.
func (n *Namer) Destination(root string, entry model.CatalogEntry) model.Destination {
	return DestinationFor(root, n.Identifier(entry))
}

// Collisions reports how many entries received a disambiguating suffix.
func (n *Namer) Collisions() int {
	if n == nil {
		return 0
	}
	return n.collisions
}

// disambiguate appends "_" and a short URL digest, shortening the base on a
// rune boundary so the result stays within MaxIdentifierLen. The first
// character is preserved so the bucket does not change.
func disambiguate(id, url string) string {
	sum := sha256.Sum256([]byte(url))
	suffix := "_" + hex.EncodeToString(sum[:])[:suffixLen]

	base := id
	if limit := MaxIdentifierLen - len(suffix); len(base) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(base[cut]) {
			cut--
		}
		base = base[:cut]
	}
	return base + suffix
}
