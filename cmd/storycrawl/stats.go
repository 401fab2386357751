package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/storycrawl/internal/model"
	"github.com/nao1215/storycrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <story-file>",
		Short: "Print actions, branches and endings of a story file",
		Long: `Stats loads a story file and prints, for every story in it, the number
of actions (choices), branches (pages with two or more choices) and endings.

Both the current file format and the legacy one (story_title, actions,
action_text) are accepted.

Examples:
  # Summarize a crawl
  storycrawl stats stories.json

  # Include page count and depth
  storycrawl stats -v stories.json

  # Markdown table for a README
  storycrawl stats --markdown stories.json`,
		Args: cobra.ExactArgs(1),
		RunE: runStatsCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output statistics in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output statistics in Markdown format")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	forest, err := model.LoadForest(args[0])
	if err != nil {
		return fmt.Errorf("failed to load story file: %w", err)
	}

	summary := report.NewSummary(args[0], forest, 0)
	_, err = newWriter(cmd.OutOrStdout(), jsonOutput, markdownOutput, getVerboseFlag(cmd)).Write(summary)
	return err
}
