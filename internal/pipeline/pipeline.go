package pipeline

import (
	"context"
	"log/slog"

	"github.com/glimgeist/beforeiplay-scraper/internal/log"
)

// Stage is one step of materializing an entry.
//
// A stage either advances the job, finishes it early with a successful
// result (Job.Finish), or fails it (Job.Fail) and returns the error.
type Stage interface {
	// Do executes the stage on job.
	Do(ctx context.Context, job *Job) error

	// Name returns the stage name for logging.
	Name() string
}

// Pipeline executes stages in order.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{stages: make([]Stage, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Discard()
	}
	return p
}

// AddStages appends stages. They run in the order added.
func (p *Pipeline) AddStages(stages ...Stage) {
	p.stages = append(p.stages, stages...)
}

// Execute runs the stages on job until one fails, the job finishes early, or
// the stages are exhausted. Cancellation is checked before each stage; a
// stage in progress handles its own cancellation.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("materialization cancelled", "stage", stage.Name(), "title", job.Entry.Title)
			job.Fail(failureOutcome(job), err)
			return err
		}

		if err := stage.Do(ctx, job); err != nil {
			p.logger.Debug("stage failed",
				"stage", stage.Name(),
				"title", job.Entry.Title,
				"error", err,
			)
			if !job.Done() {
				job.Fail(failureOutcome(job), err)
			}
			return err
		}

		if job.Done() {
			p.logger.Debug("job finished early", "stage", stage.Name(), "title", job.Entry.Title)
			return nil
		}
	}
	return nil
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
