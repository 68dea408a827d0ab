package naming

import "errors"

// ErrInvalidLetter is returned by ParseLetter when the input does not name a
// bucket. Callers are expected to warn and continue without a filter.
var ErrInvalidLetter = errors.New("invalid letter filter: use a single character, a digit, or 0-9")
