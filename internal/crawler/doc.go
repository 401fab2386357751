// Package crawler reconstructs the choice tree of a story by driving a
// browser.Session through its pages.
//
// # Traversal modes
//
//   - Crawler walks every reachable choice depth first, visiting the
//     choices of each page in sorted label order, and backtracks with
//     GoBack after each subtree.
//   - Walker samples one root-to-ending path per call and merges it into a
//     tree that may already hold earlier paths.
//
// # Frontier
//
// The pages of a story can link back to pages already on the current path.
// A Frontier remembers, per page fingerprint, which labels were taken during
// the current descent, so a page reached again through a loop does not take
// the same choice twice. Entries only live while their page is on the stack:
// sibling branches that reach the same page start fresh.
//
// # Errors
//
// A choice that cannot be activated is skipped (Crawler) or re-sampled
// (Walker). Any other session failure aborts the story and is returned as a
// *StoryError naming the story id.
//
// # Usage
//
//	c := crawler.New(session, crawler.WithLogger(logger))
//	root, err := c.Crawl(ctx, "1234", -1, crawler.NewFrontier())
package crawler
