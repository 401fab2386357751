// Package browser drives the pages a story crawl walks through.
//
// The crawler only depends on the Session interface: read the location and
// title, read element text by XPath locator, list the choice labels, follow a
// choice by its visible text, and go back. Three backends implement it:
//
//   - ChromeSession drives a real Chrome tab through chromedp. Use it for sites
//     that rely on JavaScript or form postbacks.
//   - HTTPSession fetches pages with net/http and follows plain links.
//   - ReplaySession serves a previously crawled story tree, rendered in the
//     site's page layout, so stored stories can be re-walked offline.
//
// Every backend parses the current DOM into a Page once per navigation and
// answers all reads from that snapshot. Throttle wraps any session with a
// rate limiter so navigation happens at a polite pace.
package browser
