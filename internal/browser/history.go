package browser

import (
	"context"
	"fmt"
)

// document is one entry of a session's back stack.
type document struct {
	location string
	page     *Page
}

// history answers page reads from the top of a back stack. Sessions that
// load whole documents themselves embed it.
type history struct {
	docs          []document
	choiceLocator string
	closed        bool
}

func (h *history) current() *document {
	if len(h.docs) == 0 {
		return nil
	}
	return &h.docs[len(h.docs)-1]
}

func (h *history) push(doc document) {
	h.docs = append(h.docs, doc)
}

// CurrentLocation returns the URL of the current document, or about:blank
// before the first navigation.
func (h *history) CurrentLocation(_ context.Context) (string, error) {
	if h.closed {
		return "", ErrSessionClosed
	}
	if doc := h.current(); doc != nil {
		return doc.location, nil
	}
	return "about:blank", nil
}

// PageTitle returns the title of the current document.
func (h *history) PageTitle(_ context.Context) (string, error) {
	if h.closed {
		return "", ErrSessionClosed
	}
	if doc := h.current(); doc != nil {
		return doc.page.Title(), nil
	}
	return "", nil
}

// ReadText reads an element's visible text.
func (h *history) ReadText(_ context.Context, locator string) (string, error) {
	if h.closed {
		return "", ErrSessionClosed
	}
	doc := h.current()
	if doc == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	return doc.page.Text(locator)
}

// ListChoiceLabels lists the choices of the current document.
func (h *history) ListChoiceLabels(_ context.Context) ([]string, error) {
	if h.closed {
		return nil, ErrSessionClosed
	}
	doc := h.current()
	if doc == nil {
		return nil, nil
	}
	return doc.page.List(h.choiceLocator)
}

// GoBack pops the current document.
func (h *history) GoBack(_ context.Context) error {
	if h.closed {
		return ErrSessionClosed
	}
	if len(h.docs) < 2 {
		return ErrNoHistory
	}
	h.docs = h.docs[:len(h.docs)-1]
	return nil
}

// link returns the absolute target of the current document's link with the
// given text.
func (h *history) link(label string) (string, error) {
	if h.closed {
		return "", ErrSessionClosed
	}
	doc := h.current()
	if doc == nil {
		return "", fmt.Errorf("%w: %q", ErrChoiceUnavailable, label)
	}
	href, ok := doc.page.Link(label)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrChoiceUnavailable, label)
	}
	target := resolveLink(doc.location, href)
	if target == "" {
		return "", fmt.Errorf("%w: %q has no followable link", ErrChoiceUnavailable, label)
	}
	return target, nil
}

func (h *history) close() {
	h.closed = true
	h.docs = nil
}
