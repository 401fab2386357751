package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/model"
)

// Walker samples random paths through a story.
type Walker struct {
	session browser.Session
	options
}

// NewWalker creates a Walker driving session.
func NewWalker(session browser.Session, opts ...Option) *Walker {
	return &Walker{
		session: session,
		options: newOptions(opts),
	}
}

// WalkOnce follows one random path from the first page of story id to an
// ending and merges it into root. A nil root starts a new tree. The
// returned root is root itself when it was not nil.
//
// A choice already present under a node is descended into instead of
// being added again, so repeated walks only ever grow the tree. When the
// sampled choice cannot be activated another one is sampled, until every
// visible choice was tried.
func (w *Walker) WalkOnce(ctx context.Context, id string, root *model.Node) (*model.Node, error) {
	title, err := enterStory(ctx, w.session, w.site, id)
	if err != nil {
		return root, storyError(id, err)
	}
	if root == nil {
		root = &model.Node{}
	}
	root.ID = id
	root.Title = title

	if err := w.step(ctx, id, root, w.depth, 0); err != nil {
		return root, storyError(id, err)
	}
	return root, nil
}

// Walk runs count walks of story id into root.
func (w *Walker) Walk(ctx context.Context, id string, root *model.Node, count int) (*model.Node, error) {
	for i := range count {
		var err error
		root, err = w.WalkOnce(ctx, id, root)
		if err != nil {
			return root, err
		}
		w.logger.Debug("random walk finished",
			slog.String("story", id), slog.Int("walk", i+1), slog.Int("nodes", root.Size()))
	}
	return root, nil
}

func (w *Walker) step(ctx context.Context, id string, node *model.Node, depth, level int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	snap, err := TakeSnapshot(ctx, w.session, w.site)
	if err != nil {
		return err
	}
	if snap.Terminal || depth == 0 {
		return nil
	}
	if node.Text == "" {
		node.Text = snap.Text
	}

	for _, i := range w.rand.Perm(len(snap.Labels)) {
		label := snap.Labels[i]
		err := w.session.ActivateByLabel(ctx, label)
		if errors.Is(err, browser.ErrChoiceUnavailable) {
			w.logger.Debug("resampling unavailable choice",
				slog.String("story", id), slog.String("label", label))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to take %q: %w", label, err)
		}

		child := node.Child(label)
		if child == nil {
			child = &model.Node{}
		}
		if err := w.step(ctx, id, child, depth-1, level+1); err != nil {
			return err
		}
		if err := w.session.GoBack(ctx); err != nil {
			return fmt.Errorf("failed to go back from %q: %w", label, err)
		}
		node.AddChoice(label, child)

		w.report(Progress{StoryID: id, Label: label, Depth: level})
		return nil
	}
	return nil
}
