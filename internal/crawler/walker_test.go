package crawler

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/model"
)

func seeded(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// assertUniqueLabels fails when any node holds two choices with one label.
func assertUniqueLabels(t *testing.T, n *model.Node) {
	t.Helper()
	seen := make(map[string]bool)
	for _, c := range n.Choices {
		if seen[c.Label] {
			t.Errorf("duplicate choice %q", c.Label)
		}
		seen[c.Label] = true
		assertUniqueLabels(t, c.Target)
	}
}

func TestWalker_WalkOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("one path per walk", func(t *testing.T) {
		t.Parallel()

		w := NewWalker(caveSession(), WithSite(testSite), seeded(1))
		root, err := w.WalkOnce(ctx, "1", nil)
		if err != nil {
			t.Fatalf("walk failed: %v", err)
		}
		if root.ID != "1" || root.Title != "The Cave" || root.Text != "You stand at a cave." {
			t.Errorf("unexpected root %+v", root)
		}
		if len(root.Choices) != 1 {
			t.Fatalf("expected exactly one choice after one walk, got %d", len(root.Choices))
		}
		if got := model.ComputeStats(root).Endings; got != 1 {
			t.Errorf("expected one ending, got %d", got)
		}
	})

	t.Run("identical walks merge", func(t *testing.T) {
		t.Parallel()

		s := newFakeSession("Line").
			page("fake://story/1", "Start", "go", "fake://mid").
			page("fake://mid", "Middle", "on", "fake://end").
			ending("fake://end")
		w := NewWalker(s, WithSite(testSite), seeded(2))

		root, err := w.WalkOnce(ctx, "1", nil)
		if err != nil {
			t.Fatalf("walk failed: %v", err)
		}
		again, err := w.WalkOnce(ctx, "1", root)
		if err != nil {
			t.Fatalf("walk failed: %v", err)
		}
		if again != root {
			t.Error("walk must merge into the given root")
		}
		if root.Size() != 3 || len(root.Choices) != 1 || len(root.Child("go").Choices) != 1 {
			t.Errorf("expected a single path of length 2, got %d nodes", root.Size())
		}
	})

	t.Run("tree only grows", func(t *testing.T) {
		t.Parallel()

		w := NewWalker(caveSession(), WithSite(testSite), seeded(3))
		var root *model.Node
		size := 0
		for range 30 {
			var err error
			root, err = w.WalkOnce(ctx, "1", root)
			if err != nil {
				t.Fatalf("walk failed: %v", err)
			}
			if root.Size() < size {
				t.Fatalf("tree shrank from %d to %d", size, root.Size())
			}
			size = root.Size()
		}
		assertUniqueLabels(t, root)
		if size > 5 {
			t.Errorf("tree has %d nodes, the story only has 5 distinct positions", size)
		}
	})

	t.Run("enough walks find every path", func(t *testing.T) {
		t.Parallel()

		crawled, err := New(caveSession(), WithSite(testSite)).Crawl(ctx, "1", -1, nil)
		if err != nil {
			t.Fatalf("crawl failed: %v", err)
		}
		walked, err := NewWalker(caveSession(), WithSite(testSite), seeded(4)).Walk(ctx, "1", nil, 64)
		if err != nil {
			t.Fatalf("walk failed: %v", err)
		}
		if diffs := model.Compare(walked, crawled); len(diffs) != 0 {
			t.Errorf("walked tree differs from crawl: %v", diffs)
		}
	})

	t.Run("unavailable choices are resampled", func(t *testing.T) {
		t.Parallel()

		for seed := range uint64(10) {
			s := newFakeSession("Dead end").
				page("fake://story/1", "Start", "dead", "fake://end", "live", "fake://end").
				ending("fake://end")
			s.unavailable["dead"] = true

			root, err := NewWalker(s, WithSite(testSite), seeded(seed)).WalkOnce(ctx, "1", nil)
			if err != nil {
				t.Fatalf("seed %d: walk failed: %v", seed, err)
			}
			if got := labels(root.Labels()...); got != "live" {
				t.Errorf("seed %d: expected live, got %q", seed, got)
			}
		}
	})

	t.Run("max depth bounds the walk", func(t *testing.T) {
		t.Parallel()

		s := newFakeSession("Line").
			page("fake://story/1", "Start", "go", "fake://mid").
			page("fake://mid", "Middle", "on", "fake://end").
			ending("fake://end")
		root, err := NewWalker(s, WithSite(testSite), WithMaxDepth(1)).WalkOnce(ctx, "1", nil)
		if err != nil {
			t.Fatalf("walk failed: %v", err)
		}
		child := root.Child("go")
		if child == nil || !child.IsLeaf() || child.Text != "" {
			t.Errorf("expected an empty leaf at the depth limit, got %+v", child)
		}
	})

	t.Run("page without choices keeps its text", func(t *testing.T) {
		t.Parallel()

		s := newFakeSession("Short").
			page("fake://story/1", "Start", "go", "fake://last").
			page("fake://last", "The end.")
		root, err := NewWalker(s, WithSite(testSite)).WalkOnce(ctx, "1", nil)
		if err != nil {
			t.Fatalf("walk failed: %v", err)
		}
		if got := root.Child("go"); got == nil || got.Text != "The end." {
			t.Errorf("expected the last page's text, got %+v", got)
		}
	})

	t.Run("navigation failure names the story", func(t *testing.T) {
		t.Parallel()

		s := caveSession()
		s.broken["a"], s.broken["b"], s.broken["c"] = true, true, true
		_, err := NewWalker(s, WithSite(testSite)).WalkOnce(ctx, "1", nil)

		var storyErr *StoryError
		if !errors.As(err, &storyErr) || storyErr.StoryID != "1" {
			t.Fatalf("expected a StoryError for story 1, got %v", err)
		}
		if !errors.Is(err, browser.ErrNavigation) {
			t.Errorf("expected ErrNavigation, got %v", err)
		}
	})
}
