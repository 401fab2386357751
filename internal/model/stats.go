package model

// Stats summarizes the shape of a story tree.
type Stats struct {
	// Actions is the total number of choices in the tree.
	Actions int `json:"actions"`

	// Branches is the number of nodes offering two or more choices.
	Branches int `json:"branches"`

	// Endings is the number of leaves.
	Endings int `json:"endings"`
}

// ComputeStats walks the tree rooted at n and counts its actions, branch
// points and endings. A nil node counts as a single ending.
//
// A node with exactly one choice is not a branch, but its child is still
// counted.
func ComputeStats(n *Node) Stats {
	if n == nil || n.IsLeaf() {
		return Stats{Endings: 1}
	}

	s := Stats{Actions: len(n.Choices)}
	if len(n.Choices) >= 2 {
		s.Branches = 1
	}
	for _, c := range n.Choices {
		s = s.Add(ComputeStats(c.Target))
	}
	return s
}

// Add returns the element-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Actions:  s.Actions + o.Actions,
		Branches: s.Branches + o.Branches,
		Endings:  s.Endings + o.Endings,
	}
}
