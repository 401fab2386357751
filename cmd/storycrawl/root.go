// Package main provides the entry point for the storycrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for storycrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storycrawl",
		Short: "Crawl choose-your-own-adventure stories into JSON trees",
		Long: `storycrawl traverses interactive stories on chooseyourstory.com and
records every page and choice as a JSON tree.

A story is explored exhaustively (every choice, in label order) or sampled
with random walks. The resulting files can be summarized, compared and
flattened into a plain-text training corpus.

By default a Chrome browser is driven through the DevTools protocol.
Use --engine http for plain HTTP, or --engine replay to crawl a stored file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", logFormatText, "Log output format: text or json")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
