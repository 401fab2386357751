// Package corpus flattens story trees into a plain-text training corpus.
//
// Every path from a story root to an ending becomes one text. Page bodies
// are written as they are; choices become "> " lines, rewritten into the
// second person unless raw actions are requested. Each text ends with
// EndOfText.
//
// Stories are flattened concurrently with errgroup; the output keeps the
// order of the input forest.
package corpus
