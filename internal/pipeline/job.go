package pipeline

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/glimgeist/beforeiplay-scraper/internal/extract"
	"github.com/glimgeist/beforeiplay-scraper/internal/model"
)

// Job carries one entry through the stages.
type Job struct {
	Entry       model.CatalogEntry
	Destination model.Destination

	// Document is set by the fetch stage.
	Document *goquery.Document

	// Extraction is set by the extract stage.
	Extraction extract.Extraction

	// Markdown is set by the convert stage.
	Markdown []byte

	requestMade bool
	done        bool
	result      model.Result
}

// NewJob creates a job for entry.
func NewJob(entry model.CatalogEntry) *Job {
	return &Job{Entry: entry}
}

// MarkRequest records that a network request for the page is being made.
// It must be called before the request is issued so a failing request still
// counts.
func (j *Job) MarkRequest() {
	j.requestMade = true
}

// RequestMade reports whether a page request was issued.
func (j *Job) RequestMade() bool {
	return j.requestMade
}

// Finish ends the job successfully with the given outcome.
func (j *Job) Finish(outcome model.Outcome) {
	j.done = true
	j.result = j.baseResult(outcome)
	j.result.Succeeded = true
}

// Fail ends the job with a failure.
func (j *Job) Fail(outcome model.Outcome, err error) {
	j.done = true
	j.result = j.baseResult(outcome)
	j.result.Succeeded = false
	j.result.Err = err
}

// Done reports whether the job has a final result.
func (j *Job) Done() bool {
	return j.done
}

// Result returns the final result. Before the job is done it reports a
// failure with the current request state.
func (j *Job) Result() model.Result {
	if !j.done {
		return j.baseResult(failureOutcome(j))
	}
	return j.result
}

func (j *Job) baseResult(outcome model.Outcome) model.Result {
	return model.Result{
		RequestMade: j.requestMade,
		Outcome:     outcome,
		Destination: j.Destination,
		PageTitle:   j.Extraction.PageTitle,
		Placeholder: j.Document != nil && !j.Extraction.Found && j.Extraction.PageTitle != "",
	}
}

// failureOutcome picks the outcome for a failure not classified by a stage.
func failureOutcome(j *Job) model.Outcome {
	if j.requestMade {
		return model.OutcomeFetchFailed
	}
	return model.OutcomeLocalFailed
}
