package browser

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Page is a parsed snapshot of one document.
// Reads never touch the live page, so a Page stays valid after the browser
// has moved on.
type Page struct {
	// root is the document node produced by the HTML parser.
	root *html.Node

	// doc wraps root for CSS-style link lookups.
	doc *goquery.Document
}

// ParsePage parses an HTML document.
func ParsePage(r io.Reader) (*Page, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Page{
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
	}, nil
}

// Title returns the text of the document's <title> element.
func (p *Page) Title() string {
	return collapseSpaces(p.doc.Find("title").First().Text())
}

// Text returns the visible text of the first element matching the XPath
// locator, or ErrNotFound.
func (p *Page) Text(locator string) (string, error) {
	node, err := htmlquery.Query(p.root, locator)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidLocator, locator, err)
	}
	if node == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	return VisibleText(node), nil
}

// List returns the visible text of every element matching the XPath
// locator, in document order. Elements without text are skipped.
func (p *Page) List(locator string) ([]string, error) {
	nodes, err := htmlquery.QueryAll(p.root, locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLocator, locator, err)
	}
	items := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if text := VisibleText(n); text != "" {
			items = append(items, text)
		}
	}
	return items, nil
}

// Link returns the href of the first anchor whose visible text equals label.
// Whitespace inside the anchor text is collapsed before comparing.
func (p *Page) Link(label string) (string, bool) {
	want := collapseSpaces(label)
	anchor := p.doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return collapseSpaces(VisibleText(s.Get(0))) == want
	}).First()
	if anchor.Length() == 0 {
		return "", false
	}
	href, _ := anchor.Attr("href")
	return strings.TrimSpace(href), true
}

// resolveLink resolves href against base. Links that cannot be followed
// without a script engine resolve to the empty string.
func resolveLink(base, href string) string {
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
