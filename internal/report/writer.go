package report

import (
	"io"
)

// Writer renders reports to an output.
type Writer interface {
	// Write renders a crawl summary.
	// Returns the number of bytes written and any error encountered.
	Write(summary *Summary) (int, error)

	// WriteComparison renders the result of a tree comparison.
	WriteComparison(comparison *Comparison) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// Stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the summary with every writer.
func (m *MultiWriter) Write(summary *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteComparison renders the comparison with every writer.
func (m *MultiWriter) WriteComparison(comparison *Comparison) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteComparison(comparison)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
