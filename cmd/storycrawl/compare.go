package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/storycrawl/internal/config"
	"github.com/nao1215/storycrawl/internal/database"
	"github.com/nao1215/storycrawl/internal/model"
	"github.com/nao1215/storycrawl/internal/report"
	"github.com/spf13/cobra"
)

// dateLayout is the format of --since and of listed crawl dates.
const dateLayout = "2006-01-02"

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [first-file second-file]",
		Short: "Compare two story files or two stored crawls",
		Long: `Compare reports whether two story trees are the same.

Choices are matched by label, so the order in which they were explored does
not matter. The verdict is "same" or "not the same"; with --verbose every
difference is listed with the path of labels leading to it.

Two files can be compared directly. With --story the crawl history
database is used instead: by default the latest two crawls of the story
are compared.

Examples:
  # Compare two files
  storycrawl compare old.json new.json

  # Show where they differ
  storycrawl compare -v old.json new.json

  # Compare the latest two crawls of a story
  storycrawl compare --story 12345

  # List the crawl history of a story
  storycrawl compare --story 12345 --list

  # Compare the latest crawl with a specific one
  storycrawl compare --story 12345 --with-crawl-id 3

  # Compare the latest crawl with the first one since a date
  storycrawl compare --story 12345 --since 2026-01-01

  # List all stories in the database
  storycrawl compare --list-stories`,
		Args: cobra.RangeArgs(0, 2),
		RunE: runCompareCmd,
	}

	// History flags
	cmd.Flags().StringP("story", "s", "",
		"Compare stored crawls of this story id instead of files")
	cmd.Flags().BoolP("list", "l", false,
		"List the crawl history of --story")
	cmd.Flags().BoolP("list-stories", "L", false,
		"List all stories in the database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the crawl history database")

	// Comparison target flags
	cmd.Flags().Int64P("with-crawl-id", "i", 0,
		"Compare with a specific crawl by ID (use --list to see available IDs)")
	cmd.Flags().String("since", "",
		"Compare with the first crawl after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// compareTarget selects the crawls of a story to compare.
type compareTarget struct {
	storyID     string
	withCrawlID int64
	since       string
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	storyID, err := flags.GetString("story")
	if err != nil {
		return err
	}
	storyID = model.CanonicalID(storyID)
	listStories, err := flags.GetBool("list-stories")
	if err != nil {
		return err
	}
	listHistory, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}
	writer := newWriter(cmd.OutOrStdout(), jsonOutput, markdownOutput, getVerboseFlag(cmd))

	// Validate arguments before opening the database
	if !listStories && storyID == "" {
		if len(args) != 2 {
			return errors.New("two story files are required (or use --story to compare stored crawls)")
		}
		return compareFiles(writer, args[0], args[1])
	}
	if len(args) > 0 {
		return errors.New("story files cannot be combined with --story or --list-stories")
	}

	target := compareTarget{storyID: storyID}
	if target.withCrawlID, err = flags.GetInt64("with-crawl-id"); err != nil {
		return err
	}
	if target.since, err = flags.GetString("since"); err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case listStories:
		return listStoredStories(ctx, out, db)
	case listHistory:
		return listStoryHistory(ctx, out, db, storyID)
	default:
		return compareCrawls(ctx, writer, db, target)
	}
}

// compareFiles compares the forests stored in two files.
func compareFiles(w report.Writer, first, second string) error {
	a, err := model.LoadForest(first)
	if err != nil {
		return fmt.Errorf("failed to load story file: %w", err)
	}
	b, err := model.LoadForest(second)
	if err != nil {
		return fmt.Errorf("failed to load story file: %w", err)
	}

	_, err = w.WriteComparison(report.NewComparison(first, second, model.CompareForests(a, b)))
	return err
}

// listStoredStories lists all stories that have crawls in the database.
func listStoredStories(ctx context.Context, w io.Writer, db *database.CrawlDB) error {
	stories, err := db.ListStories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stories: %w", err)
	}

	if len(stories) == 0 {
		fmt.Fprintln(w, "No crawled stories found in the database.")
		fmt.Fprintln(w, "\nUse 'storycrawl crawl -s <id> -o <file>' to crawl a story.")
		return nil
	}

	fmt.Fprintf(w, "Crawled stories (%d):\n\n", len(stories))
	for _, id := range stories {
		fmt.Fprintf(w, "  • %s\n", id)
	}
	fmt.Fprintln(w, "\nUse 'storycrawl compare --story <id> --list' to see the crawl history of a story.")

	return nil
}

// listStoryHistory lists every stored crawl of a story.
func listStoryHistory(ctx context.Context, w io.Writer, db *database.CrawlDB, storyID string) error {
	crawls, err := db.GetStoryHistoryWithMetadata(ctx, storyID)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if len(crawls) == 0 {
		fmt.Fprintf(w, "No crawl history found for story %s\n", storyID)
		return nil
	}

	fmt.Fprintf(w, "Crawl history for story %s (%d crawls):\n\n", storyID, len(crawls))
	fmt.Fprintf(w, "  %-6s  %-20s  %-7s  %s\n", "ID", "Date", "Mode", "Stats")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 60))

	for _, c := range crawls {
		fmt.Fprintf(w, "  %-6d  %-20s  %-7s  %s\n",
			c.ID,
			c.Timestamp.Format("2006-01-02 15:04:05"),
			c.Mode,
			formatStats(c.Stats),
		)
	}

	fmt.Fprintf(w, "\nUse 'storycrawl compare --story %s' to compare the latest two crawls.\n", storyID)
	return nil
}

// formatStats formats statistics for a history line.
func formatStats(s model.Stats) string {
	return fmt.Sprintf("A:%d B:%d E:%d", s.Actions, s.Branches, s.Endings)
}

// compareCrawls compares the latest crawl of a story with an earlier one.
func compareCrawls(ctx context.Context, w report.Writer, db *database.CrawlDB, target compareTarget) error {
	crawls, err := db.GetStoryHistory(ctx, target.storyID)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}
	if len(crawls) == 0 {
		return fmt.Errorf("no crawl history found for story %s", target.storyID)
	}

	previous, err := selectPrevious(ctx, db, crawls, target)
	if err != nil {
		return err
	}
	current := crawls[0]

	comparison := report.NewComparison(crawlLabel(previous), crawlLabel(current),
		model.Compare(previous.Root, current.Root))
	_, err = w.WriteComparison(comparison)
	return err
}

// selectPrevious picks the crawl to compare the latest one against.
// crawls is newest first.
func selectPrevious(ctx context.Context, db *database.CrawlDB, crawls []*database.StoryCrawl, target compareTarget) (*database.StoryCrawl, error) {
	switch {
	case target.withCrawlID > 0:
		previous, err := db.GetStoryCrawlByID(ctx, target.withCrawlID)
		if err != nil {
			return nil, fmt.Errorf("failed to get crawl with ID %d: %w", target.withCrawlID, err)
		}
		if previous == nil {
			return nil, fmt.Errorf("crawl with ID %d not found", target.withCrawlID)
		}
		if previous.StoryID != target.storyID {
			return nil, fmt.Errorf("crawl ID %d belongs to story %s, not %s",
				target.withCrawlID, previous.StoryID, target.storyID)
		}
		return previous, nil

	case target.since != "":
		since, err := time.Parse(dateLayout, target.since)
		if err != nil {
			return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		// Oldest crawl at or after the date.
		for i := len(crawls) - 1; i >= 0; i-- {
			if !crawls[i].Timestamp.Before(since) {
				if i == 0 {
					return nil, fmt.Errorf("only one crawl found since %s; at least 2 crawls are required for comparison", target.since)
				}
				return crawls[i], nil
			}
		}
		return nil, fmt.Errorf("no crawls found since %s", target.since)

	default:
		if len(crawls) < 2 {
			return nil, fmt.Errorf("at least 2 crawls are required for comparison (found %d)", len(crawls))
		}
		return crawls[1], nil
	}
}

// crawlLabel names a stored crawl in comparison output.
func crawlLabel(c *database.StoryCrawl) string {
	return fmt.Sprintf("crawl %d (%s)", c.ID, c.Timestamp.Format("2006-01-02 15:04:05"))
}
