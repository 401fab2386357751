package crawler

import (
	"log/slog"
	"math/rand/v2"
)

// Progress reports one taken choice.
type Progress struct {
	// StoryID is the story being traversed.
	StoryID string

	// Label is the choice that was just explored.
	Label string

	// Depth is the number of choices between the root and the page the
	// label was taken from.
	Depth int

	// Remaining is the number of sibling choices still to explore on that
	// page. Always 0 for random walks.
	Remaining int
}

// ProgressFunc receives progress events. It runs on the traversal's
// goroutine and must not block.
type ProgressFunc func(Progress)

// options are shared by Crawler and Walker.
type options struct {
	site     Site
	logger   *slog.Logger
	progress ProgressFunc
	rand     *rand.Rand
	depth    int
}

// Option configures a Crawler or a Walker.
type Option func(*options)

// WithSite sets the story URL and page locators. Empty fields keep their
// defaults.
func WithSite(site Site) Option {
	return func(o *options) {
		o.site = site.withDefaults()
	}
}

// WithLogger sets the logger for traversal events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgress sets a callback run after each explored choice.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithRand sets the random source of a Walker.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		if r != nil {
			o.rand = r
		}
	}
}

// WithMaxDepth bounds the number of choices a Walker takes per walk.
// Negative means unlimited.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.depth = depth
	}
}

func newOptions(opts []Option) options {
	o := options{
		site:   DefaultSite(),
		logger: slog.Default(),
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		depth:  -1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) report(p Progress) {
	if o.progress != nil {
		o.progress(p)
	}
}
