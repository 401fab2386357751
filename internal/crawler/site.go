package crawler

import (
	"strings"

	"github.com/nao1215/storycrawl/internal/browser"
)

// Site describes where a story starts and how its pages are read.
// Locators are XPath expressions.
type Site struct {
	// StoryURL is the address of a story's first page; {id} is replaced
	// with the story id.
	StoryURL string

	// TitleSeparator ends the story title inside the page title.
	TitleSeparator string

	// TerminalLocator selects the header of the page shown after an ending.
	TerminalLocator string

	// TerminalMarker must appear in the terminal header's text.
	TerminalMarker string

	// TextLocator selects the page body.
	TextLocator string

	// HeadingLocator selects the page heading.
	HeadingLocator string
}

// DefaultSite returns the locators of the chooseyourstory.com viewer.
func DefaultSite() Site {
	return Site{
		StoryURL:        browser.DefaultStoryURL,
		TitleSeparator:  " :: ",
		TerminalLocator: "/html/body/form/div[3]/h1",
		TerminalMarker:  "Rate",
		TextLocator:     "/html/body/div[3]/div[1]",
		HeadingLocator:  "/html/body/div[2]/h1",
	}
}

// URL returns the address of the story's first page.
func (s Site) URL(id string) string {
	return browser.ExpandStoryURL(s.StoryURL, id)
}

// StoryTitle extracts the story title from a page title.
func (s Site) StoryTitle(pageTitle string) string {
	if s.TitleSeparator != "" {
		pageTitle, _, _ = strings.Cut(pageTitle, s.TitleSeparator)
	}
	return strings.TrimSpace(pageTitle)
}

// withDefaults fills empty fields from DefaultSite.
func (s Site) withDefaults() Site {
	d := DefaultSite()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.StoryURL, d.StoryURL)
	fill(&s.TitleSeparator, d.TitleSeparator)
	fill(&s.TerminalLocator, d.TerminalLocator)
	fill(&s.TerminalMarker, d.TerminalMarker)
	fill(&s.TextLocator, d.TextLocator)
	fill(&s.HeadingLocator, d.HeadingLocator)
	return s
}
