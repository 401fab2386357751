package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/model"
)

// Crawler explores every reachable choice of a story.
type Crawler struct {
	session browser.Session
	options
}

// New creates a Crawler driving session.
func New(session browser.Session, opts ...Option) *Crawler {
	return &Crawler{
		session: session,
		options: newOptions(opts),
	}
}

// Crawl builds the tree of story id down to depth choices from the first
// page; a negative depth is unlimited.
//
// The session is navigated to the story only when it is not already there.
// Choices are explored in sorted label order. A choice that cannot be
// activated is left out of the tree; any other session error aborts the
// crawl and is returned as a *StoryError.
func (c *Crawler) Crawl(ctx context.Context, id string, depth int, frontier *Frontier) (*model.Node, error) {
	if frontier == nil {
		frontier = NewFrontier()
	}
	title, err := enterStory(ctx, c.session, c.site, id)
	if err != nil {
		return nil, storyError(id, err)
	}

	c.logger.Debug("crawling story", slog.String("story", id), slog.Int("depth", depth))
	root, err := c.visit(ctx, id, depth, 0, frontier)
	if err != nil {
		return nil, storyError(id, err)
	}
	root.ID = id
	root.Title = title
	return root, nil
}

// visit builds the subtree of the current page. The session is back on the
// same page when visit returns without error.
func (c *Crawler) visit(ctx context.Context, id string, depth, level int, frontier *Frontier) (*model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := TakeSnapshot(ctx, c.session, c.site)
	if err != nil {
		return nil, err
	}
	if snap.Terminal || depth == 0 {
		return &model.Node{}, nil
	}

	node := &model.Node{Text: snap.Text}
	fp := snap.Fingerprint()
	frontier.Acquire(fp)
	defer frontier.Release(fp)

	labels := make([]string, 0, len(snap.Labels))
	for _, label := range snap.Labels {
		if !frontier.Tried(fp, label) {
			labels = append(labels, label)
		}
	}
	slices.Sort(labels)

	for i, label := range labels {
		// A nested visit of the same page may have taken it meanwhile.
		if frontier.Tried(fp, label) {
			continue
		}

		err := c.session.ActivateByLabel(ctx, label)
		if errors.Is(err, browser.ErrChoiceUnavailable) {
			c.logger.Debug("skipping unavailable choice",
				slog.String("story", id), slog.String("label", label))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to take %q: %w", label, err)
		}
		frontier.TryLabel(fp, label)

		child, err := c.visit(ctx, id, depth-1, level+1, frontier)
		if err != nil {
			return nil, err
		}
		if err := c.session.GoBack(ctx); err != nil {
			return nil, fmt.Errorf("failed to go back from %q: %w", label, err)
		}
		node.AddChoice(label, child)

		c.report(Progress{StoryID: id, Label: label, Depth: level, Remaining: len(labels) - i - 1})
	}
	return node, nil
}

// enterStory opens the first page of story id unless the session is already
// there, and returns the story title.
func enterStory(ctx context.Context, session browser.Session, site Site, id string) (string, error) {
	target := site.URL(id)
	location, err := session.CurrentLocation(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	if location != target {
		if err := session.Navigate(ctx, target); err != nil {
			return "", err
		}
	}
	title, err := session.PageTitle(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return site.StoryTitle(title), nil
}
