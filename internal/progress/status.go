// Package progress shows a one-line spinner while stories are traversed.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/nao1215/storycrawl/internal/crawler"
)

const maxLabelWidth = 40

// Status is a terminal status line. A disabled Status does nothing, so
// callers never need to check for quiet mode.
type Status struct {
	sp      *spinner.Spinner
	enabled bool

	mu      sync.Mutex
	story   string
	index   int
	total   int
	taken   int
	running bool
}

// New creates a status line writing to w.
func New(w io.Writer, enabled bool) *Status {
	return &Status{
		sp:      spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w)),
		enabled: enabled,
	}
}

// Story switches the status line to story id, the index-th of total.
func (s *Status) Story(id string, index, total int) {
	s.mu.Lock()
	s.story, s.index, s.total, s.taken = id, index, total, 0
	suffix := s.suffix("")
	s.mu.Unlock()

	s.show(suffix)
}

// Update is a crawler.ProgressFunc.
func (s *Status) Update(p crawler.Progress) {
	s.mu.Lock()
	s.taken++
	suffix := s.suffix(fmt.Sprintf("depth %d, %q, %d left", p.Depth, truncate(p.Label), p.Remaining))
	s.mu.Unlock()

	s.show(suffix)
}

// Stop clears the status line.
func (s *Status) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.sp.Stop()
		s.running = false
	}
}

func (s *Status) show(suffix string) {
	if !s.enabled {
		return
	}
	s.sp.Lock()
	s.sp.Suffix = suffix
	s.sp.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		s.sp.Start()
		s.running = true
	}
}

// suffix renders " [2/5] story 7: 12 choices (detail)". Callers hold mu.
func (s *Status) suffix(detail string) string {
	line := fmt.Sprintf(" [%d/%d] story %s: %d choices", s.index+1, s.total, s.story, s.taken)
	if detail != "" {
		line += " (" + detail + ")"
	}
	return line
}

func truncate(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelWidth {
		return label
	}
	return string(runes[:maxLabelWidth-3]) + "..."
}
