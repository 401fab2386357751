package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/storycrawl/internal/corpus"
	"github.com/nao1215/storycrawl/internal/model"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Flatten story trees into a plain-text training corpus",
		Long: `Export turns every path from a story's start to one of its endings into
one text, and writes all texts back to back. Each text ends with
<|endoftext|>.

Choices appear as "> " lines rewritten into the second person
("> You open the door", "> You say \"hello\""). Stories with many endings
are shuffled and trimmed to --max-versions texts so that no single story
dominates the corpus.

Examples:
  # Export with defaults
  storycrawl export -i stories.json -o corpus.txt

  # Keep every path, reproducibly
  storycrawl export -i stories.json -o corpus.txt --max-versions 0 --seed 1

  # Leave out two stories and insert a separator every 3 actions
  storycrawl export -i stories.json -o corpus.txt --exclude-ids 12,34 --separate-at 3`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("input", "i", "",
		"Story file to export")
	cmd.Flags().StringP("output", "o", "",
		"Corpus file to write")
	cmd.Flags().Int("max-versions", corpus.DefaultMaxVersions,
		"Maximum number of texts per story (0 keeps every text)")
	cmd.Flags().StringSlice("exclude-ids", nil,
		"Comma-separated story ids to leave out")
	cmd.Flags().Int("separate-at", 0,
		"Split long texts with <|endoftext|>: counting up from the ending, once every N+1 actions (0 disables)")
	cmd.Flags().Uint64("seed", 0,
		"Seed for shuffling texts (default: random)")
	cmd.Flags().Int("jobs", corpus.DefaultConcurrency,
		"Number of stories flattened in parallel")
	cmd.Flags().Bool("raw-actions", false,
		"Keep choice labels as written instead of rewriting them into the second person")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	input, err := flags.GetString("input")
	if err != nil {
		return err
	}
	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	if input == "" || output == "" {
		return errors.New("both --input and --output are required")
	}

	maxVersions, err := flags.GetInt("max-versions")
	if err != nil {
		return err
	}
	exclude, err := flags.GetStringSlice("exclude-ids")
	if err != nil {
		return err
	}
	separateAt, err := flags.GetInt("separate-at")
	if err != nil {
		return err
	}
	if separateAt < 0 {
		return errors.New("--separate-at must not be negative")
	}
	rawActions, err := flags.GetBool("raw-actions")
	if err != nil {
		return err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs < 1 {
		return errors.New("--jobs must be at least 1")
	}

	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	opts := []corpus.Option{
		corpus.WithMaxVersions(maxVersions),
		corpus.WithExclude(exclude...),
		corpus.WithSeparateAt(separateAt),
		corpus.WithRawActions(rawActions),
		corpus.WithConcurrency(jobs),
		corpus.WithLogger(logger),
	}
	if flags.Changed("seed") {
		seed, err := flags.GetUint64("seed")
		if err != nil {
			return err
		}
		opts = append(opts, corpus.WithSeed(seed))
	}

	forest, err := model.LoadForest(input)
	if err != nil {
		return fmt.Errorf("failed to load story file: %w", err)
	}

	c, err := corpus.NewBuilder(opts...).Build(cmd.Context(), forest)
	if err != nil {
		return fmt.Errorf("failed to build corpus: %w", err)
	}

	if err := writeCorpus(output, c); err != nil {
		return err
	}

	printCorpusShares(cmd.OutOrStdout(), output, c)
	return nil
}

// writeCorpus writes c to path, creating parent directories.
func writeCorpus(path string, c *corpus.Corpus) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create corpus file: %w", err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return f.Close()
}

// printCorpusShares prints the number of texts and each story's share of
// the corpus.
func printCorpusShares(w io.Writer, path string, c *corpus.Corpus) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "Wrote %d texts (%d bytes) to %s\n", len(c.Texts()), c.Bytes, path)
	for i, s := range c.Stories {
		p.Fprintf(w, "  %-40s %6.2f%%  %d texts\n",
			truncate(fmt.Sprintf("%s (%s)", s.Title, s.ID), 40), c.Share(i), len(s.Texts))
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
