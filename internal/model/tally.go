package model

import "time"

// ItemRecord is the per-entry line of a run tally.
type ItemRecord struct {
	Index       int       `json:"index"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	Outcome     Outcome   `json:"outcome"`
	RequestMade bool      `json:"request_made"`
	Placeholder bool      `json:"placeholder,omitempty"`
	Error       string    `json:"error,omitempty"`
	FinishedAt  time.Time `json:"finished_at"`
}

// RunTally accumulates the results of one crawl run.
//
// Processed counts every successful entry, including entries skipped because
// their artifact already existed. Errors counts every failed entry.
type RunTally struct {
	// RunID is assigned by the run ledger when one is configured.
	RunID int64 `json:"run_id,omitempty"`

	// OutputDir is the output root of the run.
	OutputDir string `json:"output_dir"`

	// Letter is the bucket filter in effect, empty when unfiltered.
	Letter string `json:"letter,omitempty"`

	// Discovered is the catalog size before filtering.
	Discovered int `json:"discovered"`

	// Total is the number of entries selected for this run.
	Total int `json:"total"`

	Processed int `json:"processed"`
	Errors    int `json:"errors"`
	Skipped   int `json:"skipped"`
	Written   int `json:"written"`

	// Requests is the number of page requests issued.
	Requests int `json:"requests"`

	// Waited is the accumulated courtesy delay.
	Waited time.Duration `json:"waited"`

	// Interrupted is true when the run stopped early because its context ended.
	Interrupted bool `json:"interrupted,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Items []ItemRecord `json:"items,omitempty"`
}

// NewRunTally creates an empty tally for the given output root.
func NewRunTally(outputDir string) *RunTally {
	return &RunTally{
		OutputDir: outputDir,
		StartedAt: time.Now(),
		Items:     make([]ItemRecord, 0),
	}
}

// Record adds a materialization result to the tally and returns the item
// record that was appended.
func (t *RunTally) Record(entry CatalogEntry, res Result) ItemRecord {
	rec := ItemRecord{
		Index:       len(t.Items) + 1,
		Title:       entry.Title,
		URL:         entry.URL,
		Path:        res.Destination.Path(),
		Outcome:     res.Outcome,
		RequestMade: res.RequestMade,
		Placeholder: res.Placeholder,
		FinishedAt:  time.Now(),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if res.Destination.Identifier == "" {
		rec.Path = ""
	}

	if res.Succeeded {
		t.Processed++
	} else {
		t.Errors++
	}
	if res.RequestMade {
		t.Requests++
	}
	switch res.Outcome {
	case OutcomeSkipped:
		t.Skipped++
	case OutcomeWritten:
		t.Written++
	default:
	}

	t.Items = append(t.Items, rec)
	return rec
}

// Finish stamps the completion time.
func (t *RunTally) Finish() {
	t.FinishedAt = time.Now()
}

// Duration returns how long the run took. It is zero until Finish is called.
func (t *RunTally) Duration() time.Duration {
	if t.FinishedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}
