package naming

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// Bucket is the first-character partition of the output tree.
type Bucket string

const (
	// BucketDigits holds identifiers starting with 0-9.
	BucketDigits Bucket = "0-9"

	// BucketOther holds identifiers starting with anything that is not an
	// ASCII letter or digit.
	BucketOther Bucket = "_"
)

// BucketOf derives the bucket from the first character of an Identifier.
// The mapping is a pure function, so the letter filter and the destination
// path always agree for the same title.
func BucketOf(identifier string) Bucket {
	r, _ := utf8.DecodeRuneInString(identifier)
	r = unicode.ToUpper(r)
	switch {
	case r >= '0' && r <= '9':
		return BucketDigits
	case r >= 'A' && r <= 'Z':
		return Bucket(string(r))
	default:
		return BucketOther
	}
}

// BucketOfTitle sanitizes the title and returns its bucket.
func BucketOfTitle(title string) Bucket {
	return BucketOf(Sanitize(title))
}

// ParseLetter maps a user-supplied letter filter onto a bucket.
//
//   - any single digit, or "0-9", selects BucketDigits
//   - a single ASCII letter (either case) selects that letter
//   - any other single character selects the bucket its sanitized form
//     lands in, so "é" selects "E" and "?" selects BucketOther
//
// Anything else returns ErrInvalidLetter. Callers warn and run unfiltered.
func ParseLetter(input string) (Bucket, error) {
	s := strings.ToUpper(strings.TrimSpace(input))
	if s == string(BucketDigits) {
		return BucketDigits, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return "", ErrInvalidLetter
	}
	return BucketOfTitle(s), nil
}

// DestinationFor builds the artifact location for an identifier.
func DestinationFor(root, identifier string) model.Destination {
	return model.Destination{
		Root:       filepath.Clean(root),
		Bucket:     string(BucketOf(identifier)),
		Identifier: identifier,
	}
}
