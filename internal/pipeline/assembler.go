package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/storycrawl/internal/model"
)

// CacheFunc returns a stored tree to reuse instead of traversing story id,
// or nil to traverse it.
type CacheFunc func(ctx context.Context, id string) (*model.Node, error)

// PlanFunc returns the depth limit and number of random walks for story id.
type PlanFunc func(id string) (depth, walks int)

// Assembler runs the pipeline over a list of stories.
type Assembler struct {
	// pipeline is executed once per story.
	pipeline *Pipeline

	// logger is used for run-level logging.
	logger *slog.Logger

	depth int
	walks int
	runID string
	cache CacheFunc
	plan  PlanFunc

	onStart  func(id string, index, total int)
	onFinish func(job *Job)
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithAssemblerLogger sets a custom logger.
func WithAssemblerLogger(logger *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithDepth sets the traversal depth limit. Negative is unlimited.
func WithDepth(depth int) AssemblerOption {
	return func(a *Assembler) {
		a.depth = depth
	}
}

// WithWalks switches to random mode with n walks per story. Zero keeps the
// exhaustive crawl.
func WithWalks(n int) AssemblerOption {
	return func(a *Assembler) {
		a.walks = n
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) AssemblerOption {
	return func(a *Assembler) {
		a.runID = id
	}
}

// WithPlan sets per-story depth and walk counts, overriding WithDepth and
// WithWalks.
func WithPlan(fn PlanFunc) AssemblerOption {
	return func(a *Assembler) {
		a.plan = fn
	}
}

// WithCache sets a lookup for trees that can be reused without traversal.
func WithCache(fn CacheFunc) AssemblerOption {
	return func(a *Assembler) {
		a.cache = fn
	}
}

// WithOnStart sets a callback run before each traversed story.
func WithOnStart(fn func(id string, index, total int)) AssemblerOption {
	return func(a *Assembler) {
		a.onStart = fn
	}
}

// WithOnFinish sets a callback run after each traversed story.
func WithOnFinish(fn func(job *Job)) AssemblerOption {
	return func(a *Assembler) {
		a.onFinish = fn
	}
}

// NewAssembler creates an Assembler executing p for every story.
func NewAssembler(p *Pipeline, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		pipeline: p,
		depth:    -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.runID == "" {
		a.runID = uuid.NewString()
	}
	return a
}

// Result is the outcome of a run.
type Result struct {
	// RunID identifies the run in the crawl history.
	RunID string

	// Forest holds the prior roots followed by the stories of this run.
	Forest model.Forest

	// Jobs are the stories traversed by this run, in order.
	Jobs []*Job

	// Skipped are ids that were already in the prior forest or listed twice.
	Skipped []string

	// Reused are ids whose tree came from the cache.
	Reused []string

	// Failed is the job that stopped the run, if any.
	Failed *Job

	// Elapsed is the run's wall time.
	Elapsed time.Duration
}

// Processed returns the number of stories this run added to the forest.
func (r *Result) Processed() int {
	return len(r.Jobs) + len(r.Reused)
}

// Run traverses every id not already present in prior, one at a time.
//
// Prior roots are kept untouched at the front of the result forest. The
// first failing story stops the run: stories finished before it are still
// in the returned result, together with the error.
func (a *Assembler) Run(ctx context.Context, ids []string, prior model.Forest) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:  a.runID,
		Forest: slices.Clone(prior),
	}
	defer func() { result.Elapsed = time.Since(start) }()

	seen := make(map[string]bool, len(prior)+len(ids))
	for _, id := range prior.IDs() {
		seen[model.CanonicalID(id)] = true
	}

	a.logger.Info("starting run",
		"run", a.runID,
		"steps", a.pipeline.StepNames(),
		"stories", len(ids),
		"prior", len(prior),
	)

	for i, id := range ids {
		id = model.CanonicalID(id)
		if seen[id] {
			a.logger.Info("skipping story already present", "story", id)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		seen[id] = true

		if a.cache != nil {
			root, err := a.cache(ctx, id)
			if err != nil {
				return result, fmt.Errorf("story %s: %w", id, err)
			}
			if root != nil {
				a.logger.Info("reusing stored story", "story", id)
				result.Forest = append(result.Forest, root)
				result.Reused = append(result.Reused, id)
				continue
			}
		}

		if a.onStart != nil {
			a.onStart(id, i, len(ids))
		}

		depth, walks := a.depth, a.walks
		if a.plan != nil {
			depth, walks = a.plan(id)
		}
		job := NewJob(id, depth, walks, a.runID)
		err := a.pipeline.Execute(ctx, job)
		if a.onFinish != nil {
			a.onFinish(job)
		}
		if err == nil && job.Root == nil {
			err = fmt.Errorf("story %s: %w", id, errNoTree)
		}
		if err != nil {
			result.Failed = job
			return result, err
		}

		result.Jobs = append(result.Jobs, job)
		result.Forest = append(result.Forest, job.Root)
	}

	a.logger.Info("run complete",
		"run", a.runID,
		"processed", result.Processed(),
		"skipped", len(result.Skipped),
	)
	return result, nil
}
