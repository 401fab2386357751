// Package pipeline runs the per-story stages of a crawl.
//
// A Job carries one story through a Pipeline of Steps: traversal (an
// exhaustive crawl or a number of random walks), statistics, and recording
// into the crawl history. The Assembler drives the pipeline over a list of
// story ids, skipping ids already present in a previous result, and merges
// the finished trees into one forest.
//
// Stories are processed one after another: the browser session is a single
// stateful tab.
package pipeline
