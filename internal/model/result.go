package model

// Outcome classifies how a materialization ended.
//
// Design decision: We use iota-based constants with a String method, matching
// how other enumerations in this module are modelled. The outcome is richer
// than the Succeeded/RequestMade pair and is what reports and the run ledger show.
type Outcome int

const (
	// OutcomeWritten means the page was fetched, converted and persisted.
	OutcomeWritten Outcome = iota

	// OutcomeSkipped means the artifact already existed; no request was made.
	OutcomeSkipped

	// OutcomeFetchFailed means the page request failed; nothing was written.
	OutcomeFetchFailed

	// OutcomeConvertFailed means the page was fetched but could not be
	// converted to Markdown; nothing was written.
	OutcomeConvertFailed

	// OutcomeWriteFailed means the artifact could not be persisted.
	OutcomeWriteFailed

	// OutcomeLocalFailed means the destination could not be prepared
	// before any request was made.
	OutcomeLocalFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeConvertFailed:
		return "convert_failed"
	case OutcomeWriteFailed:
		return "write_failed"
	case OutcomeLocalFailed:
		return "local_failed"
	default:
		return "unknown"
	}
}

// ParseOutcome converts the String form back into an Outcome.
// Unknown values return false.
func ParseOutcome(s string) (Outcome, bool) {
	for o := OutcomeWritten; o <= OutcomeLocalFailed; o++ {
		if o.String() == s {
			return o, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler so outcomes appear as
// strings in JSON reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the outcome of materializing one catalog entry.
//
// RequestMade is false exactly when no page request was issued, which is the
// signal the orchestrator uses to decide whether a courtesy delay is owed.
type Result struct {
	// Succeeded is true when the artifact exists at the destination afterwards.
	Succeeded bool

	// RequestMade is true when a network request for the page was issued.
	RequestMade bool

	// Outcome gives the detailed classification.
	Outcome Outcome

	// Destination is where the artifact lives (or would have lived).
	Destination Destination

	// PageTitle is the title found on the page, if one was fetched.
	PageTitle string

	// Placeholder is true when no content region was found and a
	// placeholder document was written instead.
	Placeholder bool

	// Err holds the failure cause, if any.
	Err error
}
