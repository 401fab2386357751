package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/storycrawl/internal/browser"
)

// testSite addresses fake pages by key.
var testSite = Site{
	StoryURL:        "fake://story/{id}",
	TitleSeparator:  " :: ",
	TerminalLocator: "terminal",
	TerminalMarker:  "Rate",
	TextLocator:     "text",
	HeadingLocator:  "heading",
}

type fakePage struct {
	text     string
	terminal bool
	labels   []string
	links    map[string]string
}

type attempt struct {
	page  string
	label string
}

// fakeSession is a story graph held in memory. Page keys double as
// locations. Unlike HTML fixtures it can express loops, stale labels and
// broken links.
type fakeSession struct {
	title string
	pages map[string]*fakePage
	stack []string

	// unavailable labels fail with ErrChoiceUnavailable.
	unavailable map[string]bool
	// broken labels fail with ErrNavigation.
	broken map[string]bool

	attempts    []attempt
	navigations int
}

func newFakeSession(title string) *fakeSession {
	return &fakeSession{
		title:       title,
		pages:       make(map[string]*fakePage),
		unavailable: make(map[string]bool),
		broken:      make(map[string]bool),
	}
}

// page adds a story page. links alternate label and target key.
func (f *fakeSession) page(key, text string, links ...string) *fakeSession {
	p := &fakePage{text: text, links: make(map[string]string)}
	for i := 0; i+1 < len(links); i += 2 {
		p.labels = append(p.labels, links[i])
		p.links[links[i]] = links[i+1]
	}
	f.pages[key] = p
	return f
}

// ending adds a rating page.
func (f *fakeSession) ending(key string) *fakeSession {
	f.pages[key] = &fakePage{terminal: true}
	return f
}

func (f *fakeSession) top() *fakePage {
	if len(f.stack) == 0 {
		return nil
	}
	return f.pages[f.stack[len(f.stack)-1]]
}

func (f *fakeSession) CurrentLocation(context.Context) (string, error) {
	if len(f.stack) == 0 {
		return "about:blank", nil
	}
	return f.stack[len(f.stack)-1], nil
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigations++
	if _, ok := f.pages[url]; !ok {
		return fmt.Errorf("%w: %s: status 404", browser.ErrNavigation, url)
	}
	f.stack = append(f.stack, url)
	return nil
}

func (f *fakeSession) PageTitle(context.Context) (string, error) {
	return f.title + " :: Fake Site", nil
}

func (f *fakeSession) ReadText(_ context.Context, locator string) (string, error) {
	p := f.top()
	if p == nil {
		return "", browser.ErrNotFound
	}
	switch locator {
	case testSite.TerminalLocator:
		if p.terminal {
			return "Rate This Story", nil
		}
	case testSite.HeadingLocator:
		return f.title, nil
	case testSite.TextLocator:
		if p.text != "" {
			return p.text, nil
		}
	}
	return "", browser.ErrNotFound
}

func (f *fakeSession) ListChoiceLabels(context.Context) ([]string, error) {
	p := f.top()
	if p == nil || p.terminal {
		return nil, nil
	}
	return append([]string(nil), p.labels...), nil
}

func (f *fakeSession) ActivateByLabel(_ context.Context, label string) error {
	key := f.stack[len(f.stack)-1]
	f.attempts = append(f.attempts, attempt{page: key, label: label})

	switch {
	case f.unavailable[label]:
		return fmt.Errorf("%w: %q", browser.ErrChoiceUnavailable, label)
	case f.broken[label]:
		return fmt.Errorf("%w: %q", browser.ErrNavigation, label)
	}
	target, ok := f.pages[key].links[label]
	if !ok {
		return fmt.Errorf("%w: %q", browser.ErrChoiceUnavailable, label)
	}
	f.stack = append(f.stack, target)
	return nil
}

func (f *fakeSession) GoBack(context.Context) error {
	if len(f.stack) < 2 {
		return browser.ErrNoHistory
	}
	f.stack = f.stack[:len(f.stack)-1]
	return nil
}

func (f *fakeSession) Close() error {
	return nil
}

// caveSession is a small acyclic story:
//
//	start: b -> ending, a -> "You escape."
//	       c -> inside: leave -> ending
func caveSession() *fakeSession {
	return newFakeSession("The Cave").
		page("fake://story/1", "You stand at a cave.",
			"b", "fake://end",
			"a", "fake://escape",
			"c", "fake://inside").
		page("fake://escape", "You escape.").
		page("fake://inside", "Inside.", "leave", "fake://end").
		ending("fake://end")
}

func labels(path ...string) string {
	return strings.Join(path, ",")
}
