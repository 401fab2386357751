package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary as an overview table, a story table and a chart
// of endings per story.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Summary")
	md.PlainText("")

	rows := [][]string{}
	if summary.Source != "" {
		rows = append(rows, []string{"Source", "`" + summary.Source + "`"})
	}
	if summary.RunID != "" {
		rows = append(rows, []string{"Run", "`" + summary.RunID + "`"})
	}
	rows = append(rows, []string{"Generated", summary.Generated.Format("2006-01-02 15:04:05 MST")})
	if summary.Runtime > 0 {
		rows = append(rows, []string{"Runtime", summary.Runtime.Round(time.Millisecond).String()})
	}
	rows = append(rows, []string{"Stories", strconv.Itoa(len(summary.Stories))})
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeStatus(md, summary)
	w.writeStories(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeStatus(md *markdown.Markdown, summary *Summary) {
	switch {
	case summary.Error != "":
		md.Cautionf("The run stopped early: %s", summary.Error)
		md.PlainText("")
	case len(summary.Stories) == 0:
		md.Note("No stories were processed.")
		md.PlainText("")
	}
	if len(summary.Skipped) > 0 {
		md.Importantf("%d story id(s) skipped because they were already present.", len(summary.Skipped))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeStories(md *markdown.Markdown, summary *Summary) {
	if len(summary.Stories) == 0 {
		return
	}

	md.H2("Stories")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Stories)+1)
	for _, s := range summary.Stories {
		rows = append(rows, []string{
			truncateString(s.Title, 50),
			s.ID,
			strconv.Itoa(s.Actions),
			strconv.Itoa(s.Branches),
			strconv.Itoa(s.Endings),
			strconv.Itoa(s.Nodes),
			strconv.Itoa(s.Depth),
		})
	}
	if len(summary.Stories) > 1 {
		rows = append(rows, []string{
			"**Total**", "",
			"**" + strconv.Itoa(summary.Total.Actions) + "**",
			"**" + strconv.Itoa(summary.Total.Branches) + "**",
			"**" + strconv.Itoa(summary.Total.Endings) + "**",
			"", "",
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "ID", "Actions", "Branches", "Endings", "Pages", "Depth"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(summary.Stories) > 1 {
		w.writePieChart(md, summary)
	}
}

// writePieChart writes a mermaid pie chart of endings per story.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Endings by Story"),
		piechart.WithShowData(true),
	)
	for _, s := range summary.Stories {
		label := s.Title
		if label == "" {
			label = s.ID
		}
		chart.LabelAndIntValue(label, uint64(s.Endings)) //nolint:gosec // endings are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteComparison outputs the verdict as an alert and the differences as a
// table.
func (w *MarkdownWriter) WriteComparison(comparison *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Story Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Side", "Source"},
		Rows: [][]string{
			{"First", "`" + comparison.First + "`"},
			{"Second", "`" + comparison.Second + "`"},
		},
	})
	md.PlainText("")

	if comparison.Same {
		md.Tip("The trees are the same.")
		md.PlainText("")
	} else {
		md.Warningf("The trees are not the same: %d difference(s).", len(comparison.Differences))
		md.PlainText("")

		rows := make([][]string, len(comparison.Differences))
		for i, d := range comparison.Differences {
			path := "(root)"
			if len(d.Path) > 0 {
				path = truncateString(strings.Join(d.Path, " > "), 60)
			}
			rows[i] = []string{path, d.Reason}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Path", "Difference"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [storycrawl](https://github.com/nao1215/storycrawl)*")
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
