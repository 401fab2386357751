package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const ruleWidth = 70

// SimpleWriter outputs plain text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every difference of a comparison.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary: runtime first, then one block per story.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	if summary.Source != "" {
		sb.WriteString(fmt.Sprintf("Source:   %s\n", summary.Source))
	}
	if summary.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:      %s\n", summary.RunID))
	}
	if summary.Runtime > 0 {
		sb.WriteString(fmt.Sprintf("Runtime:  %s\n", summary.Runtime.Round(time.Millisecond)))
	}
	sb.WriteString(fmt.Sprintf("Stories:  %d\n", len(summary.Stories)))
	if summary.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:   ERROR - %s\n", summary.Error))
	}
	if len(summary.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("Skipped:  %s\n", strings.Join(summary.Skipped, ", ")))
	}

	for _, story := range summary.Stories {
		sb.WriteString(strings.Repeat("=", ruleWidth))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Title:    %s\n", story.Title))
		sb.WriteString(fmt.Sprintf("ID:       %s\n", story.ID))
		sb.WriteString(fmt.Sprintf("Actions:  %d\n", story.Actions))
		sb.WriteString(fmt.Sprintf("Branches: %d\n", story.Branches))
		sb.WriteString(fmt.Sprintf("Endings:  %d\n", story.Endings))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("Pages:    %d\n", story.Nodes))
			sb.WriteString(fmt.Sprintf("Depth:    %d\n", story.Depth))
		}
	}

	if len(summary.Stories) > 1 {
		sb.WriteString(strings.Repeat("-", ruleWidth))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Total:    %d actions, %d branches, %d endings\n",
			summary.Total.Actions, summary.Total.Branches, summary.Total.Endings))
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteComparison prints the verdict and, when verbose, each difference.
func (w *SimpleWriter) WriteComparison(comparison *Comparison) (int, error) {
	var sb strings.Builder

	sb.WriteString(comparison.Verdict())
	sb.WriteString("\n")
	if w.verbose {
		for _, d := range comparison.Differences {
			sb.WriteString(fmt.Sprintf("  * %s\n", d))
		}
	}
	return io.WriteString(w.output, sb.String())
}
