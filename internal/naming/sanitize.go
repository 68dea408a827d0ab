package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxIdentifierLen is the maximum Identifier length in bytes.
	MaxIdentifierLen = 100

	// UnknownIdentifier is returned for an empty title.
	UnknownIdentifier = "_unknown_game_"

	// EmptyIdentifier is returned when sanitization removes everything.
	// It is distinct from UnknownIdentifier so the two cases stay
	// distinguishable on disk.
	EmptyIdentifier = "_sanitized_empty_"

	// forbiddenChars are removed outright. They are reserved on at least
	// one major filesystem.
	forbiddenChars = `<>:"/\|?*`
)

// dotRun matches runs of two or more periods. A run collapses to a single
// underscore so ".." can never survive as a path component.
var dotRun = regexp.MustCompile(`\.{2,}`)

// Sanitize converts a catalog title into an Identifier that is safe to use as
// a file stem on common filesystems.
//
// The result:
//   - is never empty
//   - contains none of < > : " / \ | ? * and no control characters
//   - contains no ".." sequence
//   - has no leading or trailing whitespace or periods
//   - is at most MaxIdentifierLen bytes
//
// Sanitize is pure: the same title always yields the same Identifier.
func Sanitize(title string) string {
	if title == "" {
		return UnknownIdentifier
	}

	s := fold(title)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenChars, r) {
			return -1
		}
		return r
	}, s)
	s = dotRun.ReplaceAllString(s, "_")
	s = trim(s)

	if len(s) > MaxIdentifierLen {
		s = trim(truncate(s, MaxIdentifierLen))
	}

	if s == "" {
		return EmptyIdentifier
	}
	return s
}

// fold strips combining marks after canonical decomposition so accented
// Latin letters become their ASCII base letter, and drops control and
// format characters. Letters without a decomposition are kept as-is.
func fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.In(unicode.C)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		// Invalid UTF-8 cannot be normalized; fall back to dropping
		// control characters only.
		return strings.Map(func(r rune) rune {
			if r == utf8.RuneError || unicode.IsControl(r) {
				return -1
			}
			return r
		}, s)
	}
	return out
}

func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

// truncate cuts s to at most n bytes on a rune boundary, preferring to cut
// at the last space so words are not split. Without a space it hard-cuts.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	s = s[:cut]
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return s
}
