// Package model defines the story tree produced by the crawler.
//
// The main types are:
//   - Node: one page of a story, with its outgoing choices
//   - Choice: an edge labelled with the visible choice text
//   - Forest: the ordered list of story roots written to disk
//   - Stats: action, branch and ending counts of a tree
//
// Trees are owned and acyclic: every node belongs to exactly one parent
// choice. Each node keeps a label index next to its ordered choice list so
// that random walks can merge a path into an existing tree in constant time
// per step.
//
// The JSON schema is:
//
//	{"title": "...", "id": "...", "text": "...",
//	 "choices": [{"label": "...", "target": {...}}]}
//
// title and id appear on roots only. Files in the older flat schema
// (story_title, story_id, story_text, actions[].action_text) are accepted on
// input and rewritten in the current schema on output.
package model
