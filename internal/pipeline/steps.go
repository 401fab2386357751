package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/crawler"
	"github.com/nao1215/storycrawl/internal/database"
	"github.com/nao1215/storycrawl/internal/model"
)

// errNoTree is returned by steps that need a traversed tree.
var errNoTree = errors.New("story has not been traversed")

// TraverseStep builds the story tree through a browser session.
type TraverseStep struct {
	// session is shared by every job; stories never overlap.
	session browser.Session

	// options configure the crawler and walker.
	options []crawler.Option

	// logger for structured logging.
	logger *slog.Logger
}

// NewTraverseStep creates a traversal step driving session.
func NewTraverseStep(session browser.Session, logger *slog.Logger, opts ...crawler.Option) *TraverseStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &TraverseStep{
		session: session,
		options: append([]crawler.Option{crawler.WithLogger(logger)}, opts...),
		logger:  logger,
	}
}

// Name returns the step name.
func (s *TraverseStep) Name() string {
	return "traverse"
}

// Do crawls the story, or walks it job.Walks times in random mode.
func (s *TraverseStep) Do(ctx context.Context, job *Job) error {
	var (
		root *model.Node
		err  error
	)
	switch job.Mode {
	case ModeRandom:
		opts := append(append([]crawler.Option(nil), s.options...), crawler.WithMaxDepth(job.Depth))
		root, err = crawler.NewWalker(s.session, opts...).Walk(ctx, job.StoryID, nil, job.Walks)
	default:
		root, err = crawler.New(s.session, s.options...).Crawl(ctx, job.StoryID, job.Depth, crawler.NewFrontier())
	}
	if err != nil {
		return err
	}

	job.Root = root
	s.logger.Info("story traversed",
		"story", job.StoryID,
		"title", root.Title,
		"mode", string(job.Mode),
		"nodes", root.Size(),
	)
	return nil
}

// StatsStep computes the statistics and digest of the tree.
type StatsStep struct{}

// NewStatsStep creates a statistics step.
func NewStatsStep() *StatsStep {
	return &StatsStep{}
}

// Name returns the step name.
func (s *StatsStep) Name() string {
	return "stats"
}

// Do fills job.Stats and job.Digest.
func (s *StatsStep) Do(_ context.Context, job *Job) error {
	if job.Root == nil {
		return errNoTree
	}
	job.Stats = model.ComputeStats(job.Root)
	job.Digest = model.Digest(job.Root)
	return nil
}

// Recorder stores finished crawls. *database.CrawlDB implements it.
type Recorder interface {
	SaveStoryCrawl(ctx context.Context, crawl *database.StoryCrawl) (int64, error)
}

// RecordStep saves the job into the crawl history.
type RecordStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewRecordStep creates a step saving into recorder.
func NewRecordStep(recorder Recorder, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{recorder: recorder, logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do saves the job and sets job.RecordID.
func (s *RecordStep) Do(ctx context.Context, job *Job) error {
	if job.Root == nil {
		return errNoTree
	}
	id, err := s.recorder.SaveStoryCrawl(ctx, &database.StoryCrawl{
		StoryID: job.StoryID,
		Title:   job.Root.Title,
		Mode:    string(job.Mode),
		Depth:   job.Depth,
		Walks:   job.Walks,
		Stats:   job.Stats,
		Digest:  job.Digest,
		RunID:   job.RunID,
		Root:    job.Root,
	})
	if err != nil {
		return fmt.Errorf("failed to record story %s: %w", job.StoryID, err)
	}
	job.RecordID = id
	s.logger.Debug("story recorded", "story", job.StoryID, "record", id)
	return nil
}

// DefaultPipeline creates the standard story pipeline: traverse, stats and,
// when recorder is not nil, record.
func DefaultPipeline(session browser.Session, recorder Recorder, pipelineOpts []Option, crawlerOpts ...crawler.Option) *Pipeline {
	p := New(pipelineOpts...)
	p.AddSteps(
		NewTraverseStep(session, p.logger, crawlerOpts...),
		NewStatsStep(),
	)
	if recorder != nil {
		p.AddStep(NewRecordStep(recorder, p.logger))
	}
	return p
}
