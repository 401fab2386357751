// Package report renders crawl summaries and tree comparisons.
//
// Three writers share the Writer interface:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: tables and a mermaid chart for sharing
//   - JSONWriter: structured output for other tools
//
// Summaries are built from a model.Forest, so the same writers serve the
// crawl command and the stats command.
package report
