package model

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sampleStory returns a small two-ending story.
func sampleStory(id string) *Node {
	root := NewRoot(id, "Story "+id)
	root.Text = "Begin."
	root.AddChoice("Go", &Node{})
	root.AddChoice("Stay", &Node{})
	return root
}

// TestDecodeForest tests reading story files in both shapes.
func TestDecodeForest(t *testing.T) {
	t.Parallel()

	t.Run("single object", func(t *testing.T) {
		t.Parallel()

		forest, err := DecodeForest(strings.NewReader(`{"id":"1","text":"x"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(forest) != 1 || forest[0].ID != "1" {
			t.Errorf("expected one root with id 1, got %+v", forest)
		}
	})

	t.Run("array", func(t *testing.T) {
		t.Parallel()

		forest, err := DecodeForest(strings.NewReader(`[{"id":"1"},{"id":"2"}]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := forest.IDs(); len(got) != 2 || got[0] != "1" || got[1] != "2" {
			t.Errorf("expected ids [1 2], got %v", got)
		}
	})

	malformed := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "   "},
		{name: "truncated object", input: `{"id":"1","choices":[`},
		{name: "scalar", input: `42`},
		{name: "null element", input: `[{"id":"1"}, null]`},
		{name: "wrong field type", input: `{"choices":"nope"}`},
	}
	for _, tt := range malformed {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeForest(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformedForest) {
				t.Errorf("expected ErrMalformedForest, got %v", err)
			}
		})
	}
}

// TestForest_Encode tests the single-versus-array output shape.
func TestForest_Encode(t *testing.T) {
	t.Parallel()

	t.Run("one root is written as an object", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (Forest{sampleStory("1")}).Encode(&buf); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "{") {
			t.Errorf("expected object, got %q", buf.String()[:1])
		}
	})

	t.Run("several roots are written as an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := (Forest{sampleStory("1"), sampleStory("2")}).Encode(&buf); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "[") {
			t.Errorf("expected array, got %q", buf.String()[:1])
		}
	})

	t.Run("empty forest is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := Forest(nil).Encode(&buf); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected [], got %q", buf.String())
		}
	})

	t.Run("does not escape HTML characters", func(t *testing.T) {
		t.Parallel()

		root := NewRoot("1", "Cats & Dogs")
		var buf bytes.Buffer
		if err := (Forest{root}).Encode(&buf); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Cats & Dogs") {
			t.Errorf("expected literal ampersand, got %s", buf.String())
		}
	})
}

// TestForest_SaveAndLoad tests the on-disk round trip.
func TestForest_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "stories.json")
	original := Forest{sampleStory("7"), sampleStory("8")}

	if err := original.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadForest(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diffs := CompareForests(original, loaded); len(diffs) != 0 {
		t.Errorf("expected identical forests, got %v", diffs)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if err := loaded.Save(path); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("expected re-saving a loaded forest to be byte-identical")
	}
}

// TestLoadForest_Errors tests load failures.
func TestLoadForest_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadForest(filepath.Join(t.TempDir(), "absent.json"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("corrupt file names the path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		_, err := LoadForest(path)
		if !errors.Is(err, ErrMalformedForest) {
			t.Fatalf("expected ErrMalformedForest, got %v", err)
		}
		if !strings.Contains(err.Error(), "broken.json") {
			t.Errorf("expected error to name the file, got %q", err.Error())
		}
	})
}

// TestForest_Lookup tests id-based helpers.
func TestForest_Lookup(t *testing.T) {
	t.Parallel()

	forest := Forest{sampleStory("1"), &Node{Text: "anonymous"}, sampleStory("3")}

	if !forest.Has("3") {
		t.Error("expected story 3 to be present")
	}
	if forest.Has("") {
		t.Error("expected empty id never to match")
	}
	if forest.Find("9") != nil {
		t.Error("expected missing story to return nil")
	}

	kept := forest.Without([]string{"1"})
	if len(kept) != 2 || kept.Has("1") {
		t.Errorf("expected story 1 removed, got ids %v", kept.IDs())
	}

	if forest.Find("03") == nil || !forest.Has(" 3") {
		t.Error("expected zero-padded and spaced ids to find story 3")
	}
	if kept := forest.Without([]string{"001", "3"}); len(kept) != 1 {
		t.Errorf("expected only the anonymous root left, got %d roots", len(kept))
	}
}

func TestCanonicalID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"7", "7"},
		{"007", "7"},
		{" 8", "8"},
		{"12345 ", "12345"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()

			if got := CanonicalID(tt.id); got != tt.want {
				t.Errorf("CanonicalID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
