package browser

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// lineBreaks is the number of line breaks a block element puts around its
// content. Inline elements are absent.
var lineBreaks = map[atom.Atom]int{
	atom.Address:    1,
	atom.Article:    1,
	atom.Aside:      1,
	atom.Blockquote: 1,
	atom.Center:     1,
	atom.Dd:         1,
	atom.Div:        1,
	atom.Dl:         1,
	atom.Dt:         1,
	atom.Fieldset:   1,
	atom.Figcaption: 1,
	atom.Figure:     1,
	atom.Footer:     1,
	atom.Form:       1,
	atom.H1:         1,
	atom.H2:         1,
	atom.H3:         1,
	atom.H4:         1,
	atom.H5:         1,
	atom.H6:         1,
	atom.Header:     1,
	atom.Hr:         1,
	atom.Li:         1,
	atom.Main:       1,
	atom.Nav:        1,
	atom.Ol:         1,
	atom.P:          2,
	atom.Pre:        1,
	atom.Section:    1,
	atom.Table:      1,
	atom.Tr:         1,
	atom.Ul:         1,
}

// hidden elements never contribute text.
var hidden = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Noscript: true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
}

// VisibleText renders the text of n the way a browser displays it: runs of
// whitespace collapse to one space, <br> and block elements start new lines,
// and paragraphs are separated by a blank line.
func VisibleText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var r textRenderer
	r.walk(n)
	return r.b.String()
}

type textRenderer struct {
	b strings.Builder

	// breaks is the number of line breaks owed before the next word.
	breaks int

	// space records whitespace seen since the last word on the same line.
	space bool
}

func (r *textRenderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.words(n.Data)
		return
	case html.ElementNode:
		if hidden[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			r.breaks++
			r.space = false
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	breaks := lineBreaks[n.DataAtom]
	r.lineBreak(breaks)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
	r.lineBreak(breaks)
}

func (r *textRenderer) lineBreak(n int) {
	if n > r.breaks {
		r.breaks = n
	}
	if n > 0 {
		r.space = false
	}
}

func (r *textRenderer) words(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			r.space = true
		}
		return
	}

	if r.b.Len() > 0 {
		switch {
		case r.breaks > 0:
			r.b.WriteString(strings.Repeat("\n", r.breaks))
		case r.space || startsWithSpace(s):
			r.b.WriteByte(' ')
		}
	}
	r.b.WriteString(strings.Join(fields, " "))

	r.breaks = 0
	r.space = endsWithSpace(s)
}

func startsWithSpace(s string) bool {
	return strings.TrimLeftFunc(s, unicode.IsSpace) != s
}

func endsWithSpace(s string) bool {
	return strings.TrimRightFunc(s, unicode.IsSpace) != s
}
