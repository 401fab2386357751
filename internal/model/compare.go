package model

import (
	"fmt"
	"strings"
)

// Difference describes one place where two story trees disagree.
type Difference struct {
	// Path is the sequence of choice labels from the root to the node.
	Path []string `json:"path"`

	// Reason explains what differs at that node.
	Reason string `json:"reason"`
}

// String renders the difference as "label > label: reason".
func (d Difference) String() string {
	if len(d.Path) == 0 {
		return "(root): " + d.Reason
	}
	return strings.Join(d.Path, " > ") + ": " + d.Reason
}

// Equal reports whether two trees hold the same pages and choices.
// Choice order is ignored; choices are matched by label.
func Equal(a, b *Node) bool {
	return len(Compare(a, b)) == 0
}

// Compare returns every difference between two trees. Choices are matched by
// label, so two crawls that visited choices in different orders compare equal.
func Compare(a, b *Node) []Difference {
	var diffs []Difference
	compareNodes(a, b, nil, &diffs)
	return diffs
}

func compareNodes(a, b *Node, path []string, diffs *[]Difference) {
	report := func(format string, args ...any) {
		*diffs = append(*diffs, Difference{
			Path:   append([]string(nil), path...),
			Reason: fmt.Sprintf(format, args...),
		})
	}

	if a == nil || b == nil {
		if a != b {
			report("node missing on one side")
		}
		return
	}

	if a.Title != b.Title {
		report("title %q != %q", a.Title, b.Title)
	}
	if a.ID != b.ID {
		report("id %q != %q", a.ID, b.ID)
	}
	if a.IsLeaf() && b.IsLeaf() {
		return
	}
	if a.Text != b.Text {
		report("text differs")
	}

	for _, c := range a.Choices {
		other := b.Child(c.Label)
		if other == nil {
			report("choice %q only in first", c.Label)
			continue
		}
		compareNodes(c.Target, other, append(path, c.Label), diffs)
	}
	for _, c := range b.Choices {
		if !a.HasChoice(c.Label) {
			report("choice %q only in second", c.Label)
		}
	}
}

// CompareForests matches roots by story id and compares each pair. Roots
// without an id are matched by position.
func CompareForests(a, b Forest) []Difference {
	var diffs []Difference

	if len(a) != len(b) {
		diffs = append(diffs, Difference{
			Reason: fmt.Sprintf("story count %d != %d", len(a), len(b)),
		})
	}

	for i, root := range a {
		var other *Node
		switch {
		case root.ID != "":
			other = b.Find(root.ID)
		case i < len(b):
			other = b[i]
		}
		if other == nil {
			diffs = append(diffs, Difference{
				Path:   []string{storyLabel(root, i)},
				Reason: "story only in first",
			})
			continue
		}
		for _, d := range Compare(root, other) {
			d.Path = append([]string{storyLabel(root, i)}, d.Path...)
			diffs = append(diffs, d)
		}
	}
	for i, root := range b {
		if root.ID != "" && a.Find(root.ID) == nil {
			diffs = append(diffs, Difference{
				Path:   []string{storyLabel(root, i)},
				Reason: "story only in second",
			})
		}
	}
	return diffs
}

func storyLabel(root *Node, index int) string {
	if root.ID != "" {
		return "story " + root.ID
	}
	return fmt.Sprintf("story #%d", index+1)
}
