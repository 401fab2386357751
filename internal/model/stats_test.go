package model

import "testing"

// leafNode returns a node with no choices.
func leafNode() *Node {
	return &Node{}
}

// withChoices builds a node whose choices are labelled a, b, c, ...
func withChoices(children ...*Node) *Node {
	n := &Node{Text: "page"}
	for i, child := range children {
		n.AddChoice(string(rune('a'+i)), child)
	}
	return n
}

// TestComputeStats tests tree statistics.
func TestComputeStats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree *Node
		want Stats
	}{
		{
			name: "leaf",
			tree: leafNode(),
			want: Stats{Actions: 0, Branches: 0, Endings: 1},
		},
		{
			name: "nil node counts as ending",
			tree: nil,
			want: Stats{Endings: 1},
		},
		{
			name: "single choice to leaf",
			tree: withChoices(leafNode()),
			want: Stats{Actions: 1, Branches: 0, Endings: 1},
		},
		{
			name: "two choices to leaves",
			tree: withChoices(leafNode(), leafNode()),
			want: Stats{Actions: 2, Branches: 1, Endings: 2},
		},
		{
			name: "fork with one chain",
			tree: withChoices(withChoices(leafNode()), leafNode()),
			want: Stats{Actions: 3, Branches: 1, Endings: 2},
		},
		{
			name: "nested forks",
			tree: withChoices(
				withChoices(leafNode(), leafNode(), leafNode()),
				withChoices(withChoices(leafNode(), leafNode())),
			),
			want: Stats{Actions: 8, Branches: 3, Endings: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ComputeStats(tt.tree)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if got.Endings < 1 {
				t.Error("expected at least one ending")
			}
		})
	}
}

// TestStats_Add tests stats accumulation.
func TestStats_Add(t *testing.T) {
	t.Parallel()

	got := Stats{Actions: 1, Branches: 2, Endings: 3}.Add(Stats{Actions: 10, Branches: 20, Endings: 30})
	want := Stats{Actions: 11, Branches: 22, Endings: 33}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
