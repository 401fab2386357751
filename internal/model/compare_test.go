package model

import (
	"strings"
	"testing"
)

// TestCompare tests label-matched tree comparison.
func TestCompare(t *testing.T) {
	t.Parallel()

	t.Run("choice order does not matter", func(t *testing.T) {
		t.Parallel()

		a := &Node{Text: "t"}
		a.AddChoice("x", &Node{})
		a.AddChoice("y", &Node{})

		b := &Node{Text: "t"}
		b.AddChoice("y", &Node{})
		b.AddChoice("x", &Node{})

		if !Equal(a, b) {
			t.Errorf("expected equal trees, got %v", Compare(a, b))
		}
		if Digest(a) != Digest(b) {
			t.Error("expected equal digests")
		}
	})

	t.Run("reports text difference with path", func(t *testing.T) {
		t.Parallel()

		a := &Node{Text: "t"}
		inner := &Node{Text: "old"}
		inner.AddChoice("end", &Node{})
		a.AddChoice("go", inner)

		b := &Node{Text: "t"}
		changed := &Node{Text: "new"}
		changed.AddChoice("end", &Node{})
		b.AddChoice("go", changed)

		diffs := Compare(a, b)
		if len(diffs) != 1 {
			t.Fatalf("expected 1 difference, got %v", diffs)
		}
		if got := diffs[0].String(); got != "go: text differs" {
			t.Errorf("unexpected difference %q", got)
		}
		if Digest(a) == Digest(b) {
			t.Error("expected different digests")
		}
	})

	t.Run("reports missing choices in both directions", func(t *testing.T) {
		t.Parallel()

		a := &Node{Text: "t"}
		a.AddChoice("only-a", &Node{})
		b := &Node{Text: "t"}
		b.AddChoice("only-b", &Node{})

		var reasons []string
		for _, d := range Compare(a, b) {
			reasons = append(reasons, d.Reason)
		}
		joined := strings.Join(reasons, "; ")
		if !strings.Contains(joined, `"only-a" only in first`) || !strings.Contains(joined, `"only-b" only in second`) {
			t.Errorf("unexpected reasons: %s", joined)
		}
	})

	t.Run("leaves compare equal regardless of text", func(t *testing.T) {
		t.Parallel()

		if !Equal(&Node{Text: "a"}, &Node{Text: "b"}) {
			t.Error("expected leaves to compare equal")
		}
	})

	t.Run("root title mismatch", func(t *testing.T) {
		t.Parallel()

		diffs := Compare(NewRoot("1", "A"), NewRoot("1", "B"))
		if len(diffs) != 1 || diffs[0].String() != `(root): title "A" != "B"` {
			t.Errorf("unexpected differences %v", diffs)
		}
	})
}

// TestCompareForests tests multi-story comparison.
func TestCompareForests(t *testing.T) {
	t.Parallel()

	a := Forest{sampleStory("1"), sampleStory("2")}
	b := Forest{sampleStory("2"), sampleStory("1")}
	if diffs := CompareForests(a, b); len(diffs) != 0 {
		t.Errorf("expected forests matched by id to be equal, got %v", diffs)
	}

	c := Forest{sampleStory("1"), sampleStory("3")}
	diffs := CompareForests(a, c)
	if len(diffs) != 2 {
		t.Fatalf("expected 2 differences, got %v", diffs)
	}
	if diffs[0].String() != "story 2: story only in first" {
		t.Errorf("unexpected first difference %q", diffs[0])
	}
	if diffs[1].String() != "story 3: story only in second" {
		t.Errorf("unexpected second difference %q", diffs[1])
	}
}
