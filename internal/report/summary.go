package report

import (
	"time"

	"github.com/nao1215/storycrawl/internal/model"
)

// StorySummary describes one story tree.
type StorySummary struct {
	// Title and ID come from the story root.
	Title string `json:"title"`
	ID    string `json:"id"`

	model.Stats

	// Nodes is the number of pages in the tree.
	Nodes int `json:"nodes"`

	// Depth is the length of the longest path.
	Depth int `json:"depth"`
}

// Summary is the report of one crawl run or one story file.
type Summary struct {
	// Source names the run or the file the stories came from.
	Source string `json:"source,omitempty"`

	// RunID identifies the crawl run, if any.
	RunID string `json:"run_id,omitempty"`

	// Generated is when the summary was created.
	Generated time.Time `json:"generated"`

	// Runtime is the wall time of the run. Zero for files.
	Runtime time.Duration `json:"-"`

	// RuntimeSeconds mirrors Runtime for JSON consumers.
	RuntimeSeconds float64 `json:"runtime_seconds,omitempty"`

	Stories []StorySummary `json:"stories"`

	// Total sums the statistics of every story.
	Total model.Stats `json:"total"`

	// Skipped lists story ids that were not traversed.
	Skipped []string `json:"skipped,omitempty"`

	// Error is the error that stopped the run.
	Error string `json:"error,omitempty"`
}

// NewSummary summarizes every root of forest.
func NewSummary(source string, forest model.Forest, runtime time.Duration) *Summary {
	s := &Summary{
		Source:         source,
		Generated:      time.Now(),
		Runtime:        runtime,
		RuntimeSeconds: runtime.Seconds(),
		Stories:        make([]StorySummary, 0, len(forest)),
	}
	for _, root := range forest {
		stats := model.ComputeStats(root)
		s.Stories = append(s.Stories, StorySummary{
			Title: root.Title,
			ID:    root.ID,
			Stats: stats,
			Nodes: root.Size(),
			Depth: root.Depth(),
		})
		s.Total = s.Total.Add(stats)
	}
	return s
}

// Comparison is the result of comparing two story sources.
type Comparison struct {
	// First and Second name the compared sources.
	First  string `json:"first"`
	Second string `json:"second"`

	// Same is true when no difference was found.
	Same bool `json:"same"`

	Differences []model.Difference `json:"differences,omitempty"`
}

// NewComparison creates a comparison from the differences between first
// and second.
func NewComparison(first, second string, diffs []model.Difference) *Comparison {
	return &Comparison{
		First:       first,
		Second:      second,
		Same:        len(diffs) == 0,
		Differences: diffs,
	}
}

// Verdict returns "same" or "not the same".
func (c *Comparison) Verdict() string {
	if c.Same {
		return "same"
	}
	return "not the same"
}
