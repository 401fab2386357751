package pipeline

import (
	"time"

	"github.com/nao1215/storycrawl/internal/model"
)

// Mode selects how a story is traversed.
type Mode string

const (
	// ModeCrawl explores every reachable choice.
	ModeCrawl Mode = "crawl"

	// ModeRandom accumulates a number of random walks.
	ModeRandom Mode = "random"
)

// Job is the state of one story moving through the pipeline.
type Job struct {
	// StoryID is the story to traverse.
	StoryID string

	// Mode is ModeRandom when Walks is positive, ModeCrawl otherwise.
	Mode Mode

	// Depth limits the traversal; negative is unlimited.
	Depth int

	// Walks is the number of random walks.
	Walks int

	// RunID identifies the invocation that created the job.
	RunID string

	// Root is the traversed tree, set by TraverseStep.
	Root *model.Node

	// Stats and Digest are set by StatsStep.
	Stats  model.Stats
	Digest string

	// RecordID is the crawl history row, set by RecordStep.
	RecordID int64

	// Started and Finished bracket the pipeline execution.
	Started  time.Time
	Finished time.Time

	// PerformedSteps lists the steps that completed.
	PerformedSteps []string

	// Err is the error that stopped the pipeline, if any.
	Err error
}

// NewJob creates a job for one story.
func NewJob(storyID string, depth, walks int, runID string) *Job {
	mode := ModeCrawl
	if walks > 0 {
		mode = ModeRandom
	}
	return &Job{
		StoryID: storyID,
		Mode:    mode,
		Depth:   depth,
		Walks:   walks,
		RunID:   runID,
	}
}

// Elapsed returns how long the job ran.
func (j *Job) Elapsed() time.Duration {
	if j.Finished.IsZero() {
		return 0
	}
	return j.Finished.Sub(j.Started)
}
