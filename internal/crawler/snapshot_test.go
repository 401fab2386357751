package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/storycrawl/internal/browser"
	"github.com/nao1215/storycrawl/internal/model"
)

func TestTakeSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("story page", func(t *testing.T) {
		t.Parallel()

		s := newFakeSession("Title").
			page("fake://story/1", "Body", "b", "fake://x", "a", "fake://x", "b", "fake://x", "  ", "fake://x")
		if err := s.Navigate(ctx, "fake://story/1"); err != nil {
			t.Fatal(err)
		}

		snap, err := TakeSnapshot(ctx, s, testSite)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.Terminal || snap.Heading != "Title" || snap.Text != "Body" {
			t.Errorf("unexpected snapshot %+v", snap)
		}
		if got := labels(snap.Labels...); got != "b,a" {
			t.Errorf("expected distinct labels in page order, got %q", got)
		}
	})

	t.Run("terminal page", func(t *testing.T) {
		t.Parallel()

		s := newFakeSession("Title").ending("fake://story/1")
		if err := s.Navigate(ctx, "fake://story/1"); err != nil {
			t.Fatal(err)
		}
		snap, err := TakeSnapshot(ctx, s, testSite)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !snap.Terminal || snap.Text != "" || len(snap.Labels) != 0 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	})

	t.Run("missing text reads as empty", func(t *testing.T) {
		t.Parallel()

		s := newFakeSession("Title").page("fake://story/1", "", "go", "fake://x")
		if err := s.Navigate(ctx, "fake://story/1"); err != nil {
			t.Fatal(err)
		}
		snap, err := TakeSnapshot(ctx, s, testSite)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.Text != "" || len(snap.Labels) != 1 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	})

	t.Run("labels are NFC normalized", func(t *testing.T) {
		t.Parallel()

		s := newFakeSession("Title").page("fake://story/1", "Body", "Cafe\u0301", "fake://x")
		if err := s.Navigate(ctx, "fake://story/1"); err != nil {
			t.Fatal(err)
		}
		snap, err := TakeSnapshot(ctx, s, testSite)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snap.Labels) != 1 || snap.Labels[0] != "Caf\u00e9" {
			t.Errorf("expected composed label, got %q", snap.Labels)
		}
	})

	t.Run("invalid locator is an error", func(t *testing.T) {
		t.Parallel()

		root := model.NewRoot("1", "Title")
		root.Text = "Body"
		s := browser.NewReplaySession(model.Forest{root})
		if err := s.Navigate(ctx, browser.ExpandStoryURL(browser.DefaultStoryURL, "1")); err != nil {
			t.Fatal(err)
		}

		site := DefaultSite()
		site.TerminalLocator = "//div["
		if _, err := TakeSnapshot(ctx, s, site); !errors.Is(err, browser.ErrInvalidLocator) {
			t.Errorf("expected ErrInvalidLocator, got %v", err)
		}
	})
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Snapshot{Heading: "h", Text: "t", Labels: []string{"x"}}
	b := Snapshot{Heading: "h", Text: "t"}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("labels must not affect the fingerprint")
	}
	if a.Fingerprint() == (Snapshot{Heading: "h", Text: "u"}).Fingerprint() {
		t.Error("different text must give a different fingerprint")
	}
	if a.Fingerprint() == (Snapshot{Heading: "g", Text: "t"}).Fingerprint() {
		t.Error("different heading must give a different fingerprint")
	}
	if len(a.Fingerprint().String()) != 64 {
		t.Errorf("unexpected hex length %d", len(a.Fingerprint().String()))
	}
}
