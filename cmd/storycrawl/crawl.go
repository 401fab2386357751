package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/config"
	"github.com/nao1215/storycrawl/internal/crawler"
	"github.com/nao1215/storycrawl/internal/database"
	"github.com/nao1215/storycrawl/internal/log"
	"github.com/nao1215/storycrawl/internal/model"
	"github.com/nao1215/storycrawl/internal/pipeline"
	"github.com/nao1215/storycrawl/internal/progress"
	"github.com/nao1215/storycrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [story-id...]",
		Short: "Crawl stories into a JSON tree file",
		Long: `Crawl opens each story and records its pages and choices as a tree.

Without --random every choice of every page is followed, in label order,
down to --depth choices from the start (negative means no limit). With
--random N the story is sampled by N random walks from the start to an
ending, merged into one tree.

Examples:
  # Crawl one story completely
  storycrawl crawl -s 12345 -o story.json

  # Crawl several stories, at most 10 choices deep
  storycrawl crawl -s 12345,67890 -d 10 -o stories.json

  # Add new stories to an existing file, keeping the ones already there
  storycrawl crawl -s 12345,67890,11111 -u -o stories.json

  # Sample 50 random playthroughs with a hidden browser
  storycrawl crawl -s 12345 -r 50 -n -o sample.json

  # Crawl without a browser
  storycrawl crawl --engine http -s 12345 -o story.json

  # Re-crawl a stored file, for testing locators
  storycrawl crawl --engine replay --replay story.json -s 12345 -o copy.json

Configuration file (.storycrawl) example:
  defaults:
    delay: 500ms
  stories:
    "12345":
      depth: 20
    "67890":
      random: 100`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Story selection flags
	cmd.Flags().StringSliceP("story-id", "s", nil,
		"Story id or comma-separated list of ids (positional arguments are added)")
	cmd.Flags().IntP("depth", "d", config.DefaultDepth,
		"Maximum number of choices from the start (negative means no limit)")
	cmd.Flags().StringP("output", "o", "",
		"JSON file the story tree is written to")
	cmd.Flags().BoolP("update", "u", false,
		"Keep the stories already in the output file and only crawl new ids")
	cmd.Flags().IntP("random", "r", 0,
		"Sample each story with this many random walks instead of crawling it completely")
	cmd.Flags().Uint64("seed", 0,
		"Seed for random walks (default: random)")

	// Browser flags
	cmd.Flags().String("engine", config.DefaultEngine,
		"Session backend: chrome, http or replay")
	cmd.Flags().BoolP("headless", "n", false,
		"Run Chrome without a window")
	cmd.Flags().String("replay", "",
		"Story file served by the replay engine")
	cmd.Flags().String("exec-path", "",
		"Chrome binary (default: autodetect)")
	cmd.Flags().String("user-agent", "",
		"Override the browser user agent")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each browser action")
	cmd.Flags().Duration("delay", 0,
		"Minimum time between two browser actions")
	cmd.Flags().Int64("max-page-size", config.DefaultMaxPageSize,
		"Largest page in bytes the http engine reads before failing")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .storycrawl in current or home directory)")

	// History flags
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the crawl history database")
	cmd.Flags().Bool("no-db", false,
		"Do not record crawls in the history database")
	cmd.Flags().Duration("skip-recent", 0,
		"Reuse a stored crawl younger than this instead of crawling the story again")

	// Report flags
	cmd.Flags().BoolP("quiet", "q", false,
		"Hide the progress line")
	cmd.Flags().BoolP("json", "j", false,
		"Print the summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("report", "",
		"Write the summary to this file instead of stdout (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormatFlag retrieves the log format flag from the command or its parent.
func getLogFormatFlag(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return logFormatText
		}
	}
	return format
}

// buildConfig creates a Config from the command line and the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	ids, err := flags.GetStringSlice("story-id")
	if err != nil {
		return nil, err
	}
	cfg.StoryIDs = append(ids, args...)

	if cfg.Depth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Update, err = flags.GetBool("update"); err != nil {
		return nil, err
	}
	if cfg.RandomWalks, err = flags.GetInt("random"); err != nil {
		return nil, err
	}
	if cfg.Seed, err = flags.GetUint64("seed"); err != nil {
		return nil, err
	}
	cfg.HasSeed = flags.Changed("seed")

	if cfg.Engine, err = flags.GetString("engine"); err != nil {
		return nil, err
	}
	if cfg.Headless, err = flags.GetBool("headless"); err != nil {
		return nil, err
	}
	if cfg.ReplayFile, err = flags.GetString("replay"); err != nil {
		return nil, err
	}
	if cfg.ExecPath, err = flags.GetString("exec-path"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Delay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.MaxPageSize, err = flags.GetInt64("max-page-size"); err != nil {
		return nil, err
	}

	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	if cfg.SkipRecent, err = flags.GetDuration("skip-recent"); err != nil {
		return nil, err
	}

	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// An explicit --config must exist; otherwise a missing file is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return cfg, nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ConfigFilePath = configPath
	cfg.ApplyFile(file, flags.Changed)

	return cfg, nil
}

// Log formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// setupLogger creates the CLI logger writing to w.
func setupLogger(w io.Writer, verbose bool, format string) (*slog.Logger, error) {
	switch format {
	case logFormatText, "":
		return log.NewSecureLogger(w, verbose), nil
	case logFormatJSON:
		return log.NewSecureJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("unknown log format %q: must be %s or %s", format, logFormatText, logFormatJSON)
	}
}

// commandLogger creates the logger of cmd from the global flags.
func commandLogger(cmd *cobra.Command) (*slog.Logger, error) {
	return setupLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd), getLogFormatFlag(cmd))
}

// runCrawl traverses every story of cfg and writes the forest and summary.
// The forest is written even when a story fails, so finished stories are
// not lost.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger.Info("starting crawl",
		"stories", cfg.StoryIDs,
		"engine", cfg.Engine,
		"depth", cfg.Depth,
		"random", cfg.RandomWalks,
		"output", cfg.Output,
	)

	var prior model.Forest
	if cfg.Update {
		var err error
		prior, err = model.LoadForest(cfg.Output)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("no previous output, starting a new file", "output", cfg.Output)
		case err != nil:
			return fmt.Errorf("failed to load previous output: %w", err)
		}
	}

	var (
		db       *database.CrawlDB
		recorder pipeline.Recorder
	)
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		recorder = db
		logger.Info("database opened", "path", db.Path())
	}

	session, err := openSession(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s session: %w", cfg.Engine, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("failed to close session", "error", err)
		}
	}()
	session = browser.Throttle(session, cfg.Delay)

	status := progress.New(stderr, !cfg.Quiet)
	defer status.Stop()

	crawlerOpts := []crawler.Option{
		crawler.WithSite(siteFromConfig(cfg.Site)),
		crawler.WithProgress(status.Update),
	}
	if cfg.HasSeed {
		crawlerOpts = append(crawlerOpts, crawler.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))))
	}

	p := pipeline.DefaultPipeline(session, recorder,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		crawlerOpts...,
	)

	asmOpts := []pipeline.AssemblerOption{
		pipeline.WithAssemblerLogger(logger),
		pipeline.WithPlan(cfg.Plan),
		pipeline.WithOnStart(status.Story),
	}
	if db != nil && cfg.SkipRecent > 0 {
		asmOpts = append(asmOpts, pipeline.WithCache(recentCrawl(db, cfg.SkipRecent)))
	}

	result, runErr := pipeline.NewAssembler(p, asmOpts...).Run(ctx, cfg.StoryIDs, prior)
	status.Stop()

	if result == nil {
		return runErr
	}

	if len(result.Forest) > 0 {
		if err := result.Forest.Save(cfg.Output); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to save %s: %w", cfg.Output, err))
		}
		logger.Info("story file saved", "output", cfg.Output, "stories", len(result.Forest))
	}

	summary := report.NewSummary(cfg.Output, result.Forest[len(prior):], result.Elapsed)
	summary.RunID = result.RunID
	summary.Skipped = result.Skipped
	if runErr != nil {
		summary.Error = runErr.Error()
	}
	if err := outputReport(cfg, summary, stdout); err != nil {
		return errors.Join(runErr, err)
	}

	return runErr
}

// openSession creates the session backend selected by cfg.Engine.
func openSession(ctx context.Context, cfg *config.Config) (browser.Session, error) {
	switch cfg.Engine {
	case config.EngineHTTP:
		opts := []browser.HTTPOption{
			browser.WithRequestTimeout(cfg.Timeout),
			browser.WithCookie(cfg.Cookie),
			browser.WithHeaders(cfg.Headers),
			browser.WithChoiceLocator(cfg.Site.ChoiceLocator),
			browser.WithMaxBodySize(cfg.MaxPageSize),
		}
		if cfg.UserAgent != "" {
			opts = append(opts, browser.WithUserAgent(cfg.UserAgent))
		}
		return browser.NewHTTPSession(opts...), nil

	case config.EngineReplay:
		forest, err := model.LoadForest(cfg.ReplayFile)
		if err != nil {
			return nil, err
		}
		return browser.NewReplaySession(forest, browser.WithStoryURL(cfg.Site.StoryURL)), nil

	default:
		s, err := browser.NewChromeSession(ctx, browser.ChromeOptions{
			Headless:      cfg.Headless,
			ExecPath:      cfg.ExecPath,
			UserAgent:     cfg.UserAgent,
			Timeout:       cfg.Timeout,
			ChoiceLocator: cfg.Site.ChoiceLocator,
			Cookie:        cfg.Cookie,
			Headers:       cfg.Headers,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// siteFromConfig converts configured locators. Empty fields keep the
// crawler's defaults.
func siteFromConfig(l config.SiteLocators) crawler.Site {
	return crawler.Site{
		StoryURL:        l.StoryURL,
		TitleSeparator:  l.TitleSeparator,
		TerminalLocator: l.TerminalLocator,
		TerminalMarker:  l.TerminalMarker,
		TextLocator:     l.TextLocator,
		HeadingLocator:  l.HeadingLocator,
	}
}

// recentCrawl reuses the latest stored tree of a story when it is younger
// than maxAge.
func recentCrawl(db *database.CrawlDB, maxAge time.Duration) pipeline.CacheFunc {
	return func(ctx context.Context, id string) (*model.Node, error) {
		recent, err := db.HasRecentCrawl(ctx, id, maxAge)
		if err != nil || !recent {
			return nil, err
		}
		crawl, err := db.GetLatestStoryCrawl(ctx, id)
		if err != nil || crawl == nil {
			return nil, err
		}
		return crawl.Root, nil
	}
}

// outputReport writes the summary to cfg.ReportFile, or to stdout.
func outputReport(cfg *config.Config, summary *report.Summary, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newWriter(output, cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose).Write(summary)
	return err
}

// newWriter selects the report format.
func newWriter(w io.Writer, jsonOutput, markdownOutput, verbose bool) report.Writer {
	switch {
	case jsonOutput:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case markdownOutput:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(verbose))
	}
}
