package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestThrottle(t *testing.T) {
	t.Parallel()

	t.Run("zero delay returns the session", func(t *testing.T) {
		t.Parallel()

		s := NewReplaySession(caveStory())
		if got := Throttle(s, 0); got != Session(s) {
			t.Error("expected the same session for a zero delay")
		}
	})

	t.Run("spaces page loads", func(t *testing.T) {
		t.Parallel()

		const delay = 30 * time.Millisecond
		s := Throttle(NewReplaySession(caveStory()), delay)
		ctx := context.Background()

		start := time.Now()
		if err := s.Navigate(ctx, ExpandStoryURL(DefaultStoryURL, "7")); err != nil {
			t.Fatalf("navigate failed: %v", err)
		}
		if err := s.ActivateByLabel(ctx, "Enter"); err != nil {
			t.Fatalf("activate failed: %v", err)
		}
		if err := s.GoBack(ctx); err != nil {
			t.Fatalf("go back failed: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 2*delay-5*time.Millisecond {
			t.Errorf("expected at least %v between loads, took %v", 2*delay, elapsed)
		}
	})

	t.Run("wait honors cancellation", func(t *testing.T) {
		t.Parallel()

		s := Throttle(NewReplaySession(caveStory()), time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		if err := s.Navigate(ctx, ExpandStoryURL(DefaultStoryURL, "7")); err != nil {
			t.Fatalf("navigate failed: %v", err)
		}
		cancel()
		if err := s.ActivateByLabel(ctx, "Enter"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
