package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/model"
	"github.com/spf13/cobra"
)

// defaultServeAddr is the listen address of the serve command.
const defaultServeAddr = "127.0.0.1:8080"

// shutdownTimeout bounds the graceful shutdown of the replay server.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <story-file>",
		Short: "Serve a story file as a browsable story site",
		Long: `Serve renders the stories of a file as pages laid out like the story
site, one page per node, with choices as links.

The served site can be crawled with the http engine, which makes it useful
for checking locators and for re-crawling a file without the network.

Examples:
  # Serve a file
  storycrawl serve stories.json

  # Crawl it back from another terminal
  storycrawl crawl --engine http -s 12345 -o copy.json -c served.yaml

  where served.yaml contains:
    site:
      storyURL: http://127.0.0.1:8080/story/{id}`,
		Args: cobra.ExactArgs(1),
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", defaultServeAddr,
		"Address to listen on")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	forest, err := model.LoadForest(args[0])
	if err != nil {
		return fmt.Errorf("failed to load story file: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d stories at http://%s/story/{id}\n", len(forest), addr)
	for _, id := range forest.IDs() {
		fmt.Fprintf(cmd.OutOrStdout(), "  • http://%s/story/%s\n", addr, id)
	}

	return serveForest(ctx, newReplayServer(addr, forest), logger)
}

// newReplayServer creates an HTTP server for forest.
func newReplayServer(addr string, forest model.Forest) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           browser.ReplayHandler(forest),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serveForest runs srv until ctx is cancelled.
func serveForest(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("replay server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down replay server", "addr", srv.Addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down replay server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
