package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/storycrawl/internal/model"
)

// DefaultStoryURL is the story viewer address; {id} is replaced with the
// story id.
const DefaultStoryURL = "https://chooseyourstory.com/story/viewer/default.aspx?StoryId={id}"

// ExpandStoryURL substitutes id into a story URL template.
func ExpandStoryURL(template, id string) string {
	return strings.ReplaceAll(template, "{id}", url.QueryEscape(id))
}

// ReplaySession replays stored story trees as if they were the live site.
//
// A page is addressed by its story URL plus a fragment listing the choice
// indexes taken from the root, for example "...StoryId=7#/0/2". Pages are
// rendered in the site's layout, so the same locators that work on the live
// site work here.
type ReplaySession struct {
	history

	forest   model.Forest
	template string
}

// ReplayOption configures a ReplaySession.
type ReplayOption func(*ReplaySession)

// WithStoryURL sets the story URL template the session answers to.
func WithStoryURL(template string) ReplayOption {
	return func(s *ReplaySession) {
		if template != "" {
			s.template = template
		}
	}
}

// NewReplaySession creates a session serving forest.
func NewReplaySession(forest model.Forest, opts ...ReplayOption) *ReplaySession {
	s := &ReplaySession{
		forest:   forest,
		template: DefaultStoryURL,
	}
	s.choiceLocator = DefaultChoiceLocator
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolve finds the story root and node addressed by location.
func (s *ReplaySession) resolve(location string) (*model.Node, *model.Node, []int, error) {
	base, fragment, _ := strings.Cut(location, "#")
	for _, root := range s.forest {
		if ExpandStoryURL(s.template, root.ID) != base {
			continue
		}
		path, err := parsePath(fragment)
		if err != nil {
			return nil, nil, nil, err
		}
		node, err := walkPath(root, path)
		if err != nil {
			return nil, nil, nil, err
		}
		return root, node, path, nil
	}
	return nil, nil, nil, fmt.Errorf("no story at %s", base)
}

// Navigate renders the page addressed by location.
func (s *ReplaySession) Navigate(_ context.Context, location string) error {
	if s.closed {
		return ErrSessionClosed
	}
	root, node, path, err := s.resolve(location)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	base := ExpandStoryURL(s.template, root.ID)
	body, err := renderNode(root, node, func(i int) string {
		return base + "#" + formatPath(append(path[:len(path):len(path)], i))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	page, err := ParsePage(strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	canonical := base
	if len(path) > 0 {
		canonical += "#" + formatPath(path)
	}
	s.push(document{location: canonical, page: page})
	return nil
}

// ActivateByLabel follows the choice link with the given text.
func (s *ReplaySession) ActivateByLabel(ctx context.Context, label string) error {
	target, err := s.link(label)
	if err != nil {
		return err
	}
	return s.Navigate(ctx, target)
}

// Close drops the history.
func (s *ReplaySession) Close() error {
	s.close()
	return nil
}

// ReplayHandler serves forest over HTTP:
//
//	GET /story/{id}           story root
//	GET /story/{id}/{path...} page reached through the choice indexes in path
//
// Pair it with an HTTPSession whose story URL is <server>/story/{id}.
func ReplayHandler(forest model.Forest) http.Handler {
	mux := http.NewServeMux()
	serve := func(w http.ResponseWriter, r *http.Request) {
		root := forest.Find(r.PathValue("id"))
		if root == nil {
			http.NotFound(w, r)
			return
		}
		path, err := parsePath(r.PathValue("path"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		node, err := walkPath(root, path)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		prefix := "/story/" + url.PathEscape(root.ID)
		body, err := renderNode(root, node, func(i int) string {
			return prefix + formatPath(append(path[:len(path):len(path)], i))
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	}
	mux.HandleFunc("GET /story/{id}", serve)
	mux.HandleFunc("GET /story/{id}/{path...}", serve)
	return mux
}

// parsePath parses "/0/2/1" (or "0/2/1") into choice indexes.
func parsePath(s string) ([]int, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "/")
	path := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page path %q", s)
		}
		path[i] = n
	}
	return path, nil
}

func formatPath(path []int) string {
	var b strings.Builder
	for _, i := range path {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// walkPath follows choice indexes from root.
func walkPath(root *model.Node, path []int) (*model.Node, error) {
	n := root
	for _, i := range path {
		if i >= len(n.Choices) {
			return nil, fmt.Errorf("no choice %d", i)
		}
		n = n.Choices[i].Target
		if n == nil {
			return nil, fmt.Errorf("choice %d has no target", i)
		}
	}
	return n, nil
}
