package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
//
// Design decision: Callers only need to tell transport failures from markup
// failures, so *Error matches exactly one of these two sentinels and keeps
// the finer-grained Kind for logging.
var (
	// ErrFetch matches any failure to obtain a page: connection errors,
	// timeouts, non-2xx statuses and unreadable bodies.
	ErrFetch = errors.New("fetch failed")

	// ErrParse matches a body that could not be parsed as HTML.
	ErrParse = errors.New("parse failed")

	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL: must be an absolute http or https URL")
)

// Kind classifies a fetch failure.
type Kind int

const (
	// KindTransport covers connection failures and timeouts.
	KindTransport Kind = iota

	// KindStatus means the server answered with a non-2xx status.
	KindStatus

	// KindBody means the body could not be read or decoded.
	KindBody

	// KindParse means the body could not be parsed as HTML.
	KindParse

	// KindURL means the request URL was invalid.
	KindURL
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindBody:
		return "body"
	case KindParse:
		return "parse"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// Error describes a failed request.
type Error struct {
	URL        string
	Kind       Kind
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("fetch %s: unexpected HTTP status %d", e.URL, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Cause)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches ErrFetch or ErrParse.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrParse:
		return e.Kind == KindParse
	case ErrFetch:
		return e.Kind != KindParse
	case ErrInvalidURL:
		return e.Kind == KindURL
	default:
		return false
	}
}
