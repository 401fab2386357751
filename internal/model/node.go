package model

import (
	"encoding/json"
	"fmt"
)

// Node is one page of a story tree.
//
// A node with no choices is a leaf: either a narrative ending or a page where
// the crawl stopped because of its depth limit. The two are not distinguished.
// Only the root of a tree carries Title and ID.
type Node struct {
	// Title is the story title. Set on the root only.
	Title string `json:"title,omitempty"`

	// ID is the story identifier. Set on the root only.
	ID string `json:"id,omitempty"`

	// Text is the page body. Empty on terminal leaves.
	Text string `json:"text,omitempty"`

	// Choices are the outgoing edges in the order they were explored.
	// Labels are unique within one node.
	Choices []*Choice `json:"choices,omitempty"`

	// index maps a label to its choice for O(1) merge lookups.
	// indexed is the number of Choices already folded into index.
	index   map[string]*Choice
	indexed int
}

// Choice is an edge from a page to the page reached by taking it.
type Choice struct {
	// Label is the visible text of the choice link.
	Label string `json:"label"`

	// Target is the page reached by activating the choice.
	Target *Node `json:"target"`
}

// NewRoot creates the root node of a story.
func NewRoot(id, title string) *Node {
	return &Node{ID: id, Title: title}
}

// IsLeaf reports whether the node has no outgoing choices.
func (n *Node) IsLeaf() bool {
	return len(n.Choices) == 0
}

// Child returns the target of the choice with the given label, or nil.
func (n *Node) Child(label string) *Node {
	n.ensureIndex()
	if c, ok := n.index[label]; ok {
		return c.Target
	}
	return nil
}

// HasChoice reports whether a choice with the given label exists.
func (n *Node) HasChoice(label string) bool {
	n.ensureIndex()
	_, ok := n.index[label]
	return ok
}

// AddChoice appends an edge to target. It returns false and leaves the node
// unchanged when a choice with the same label already exists.
func (n *Node) AddChoice(label string, target *Node) bool {
	if n.HasChoice(label) {
		return false
	}
	if target == nil {
		target = &Node{}
	}
	c := &Choice{Label: label, Target: target}
	n.Choices = append(n.Choices, c)
	n.index[label] = c
	n.indexed = len(n.Choices)
	return true
}

// Labels returns the labels of the node's choices in order.
func (n *Node) Labels() []string {
	labels := make([]string, len(n.Choices))
	for i, c := range n.Choices {
		labels[i] = c.Label
	}
	return labels
}

// Size returns the number of nodes in the tree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.Choices {
		size += c.Target.Size()
	}
	return size
}

// Depth returns the number of edges on the longest path from n to a leaf.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, c := range n.Choices {
		if d := c.Target.Depth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// ensureIndex folds choices added outside AddChoice (for example by JSON
// decoding) into the label index. The first choice wins on duplicate labels.
func (n *Node) ensureIndex() {
	if n.index == nil || n.indexed > len(n.Choices) {
		n.index = make(map[string]*Choice, len(n.Choices))
		n.indexed = 0
	}
	for _, c := range n.Choices[n.indexed:] {
		if _, ok := n.index[c.Label]; !ok {
			n.index[c.Label] = c
		}
	}
	n.indexed = len(n.Choices)
}

// nodeJSON accepts both the current schema and the legacy flat schema
// (story_title, story_id, story_text, actions[].action_text).
type nodeJSON struct {
	Title   string    `json:"title"`
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Choices []*Choice `json:"choices"`

	StoryTitle string         `json:"story_title"`
	StoryID    string         `json:"story_id"`
	StoryText  string         `json:"story_text"`
	Actions    []legacyAction `json:"actions"`
}

// legacyAction is a legacy edge: the label and the target's fields share one object.
type legacyAction struct {
	label  string
	target *Node
}

// UnmarshalJSON decodes a legacy action object.
func (a *legacyAction) UnmarshalJSON(data []byte) error {
	var head struct {
		ActionText string `json:"action_text"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	target := &Node{}
	if err := target.UnmarshalJSON(data); err != nil {
		return err
	}
	a.label = head.ActionText
	a.target = target
	return nil
}

// UnmarshalJSON decodes a node in either the current or the legacy schema.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*n = Node{
		Title: firstNonEmpty(w.Title, w.StoryTitle),
		ID:    firstNonEmpty(w.ID, w.StoryID),
		Text:  firstNonEmpty(w.Text, w.StoryText),
	}

	for _, c := range w.Choices {
		if c == nil {
			return fmt.Errorf("null choice under %q", n.Text)
		}
		n.AddChoice(c.Label, c.Target)
	}
	for _, a := range w.Actions {
		n.AddChoice(a.label, a.target)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
