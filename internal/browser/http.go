package browser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

	// DefaultMaxBodySize is the largest response body accepted.
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// HTTPSession is a script-free browser: pages are fetched with GET and
// choices are followed through their href.
type HTTPSession struct {
	history

	// client performs the requests.
	client *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// cookie is sent verbatim as the Cookie header when set.
	cookie string

	// headers are extra request headers.
	headers map[string]string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// HTTPOption configures an HTTPSession.
type HTTPOption func(*HTTPSession)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSession) {
		s.client = c
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSession) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) HTTPOption {
	return func(s *HTTPSession) {
		s.cookie = cookie
	}
}

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(s *HTTPSession) {
		for k, v := range headers {
			s.headers[k] = v
		}
	}
}

// WithMaxBodySize sets the largest response body accepted. A larger page
// fails with ErrNavigation.
func WithMaxBodySize(size int64) HTTPOption {
	return func(s *HTTPSession) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithChoiceLocator sets the XPath that selects choice items.
func WithChoiceLocator(locator string) HTTPOption {
	return func(s *HTTPSession) {
		if locator != "" {
			s.choiceLocator = locator
		}
	}
}

// NewHTTPSession creates a session with an empty history.
func NewHTTPSession(opts ...HTTPOption) *HTTPSession {
	s := &HTTPSession{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
	}
	s.choiceLocator = DefaultChoiceLocator
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetch GETs url and parses the response.
func (s *HTTPSession) fetch(ctx context.Context, url string) (document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return document{}, fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return document{}, ctx.Err()
		}
		return document{}, fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return document{}, fmt.Errorf("%w: %s: status %d", ErrNavigation, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize+1))
	if err != nil {
		return document{}, fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	if int64(len(body)) > s.maxBodySize {
		return document{}, fmt.Errorf("%w: %s: page larger than %d bytes", ErrNavigation, url, s.maxBodySize)
	}
	page, err := ParsePage(bytes.NewReader(body))
	if err != nil {
		return document{}, fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}

	// Redirects move the location.
	location := url
	if resp.Request != nil && resp.Request.URL != nil {
		location = resp.Request.URL.String()
	}
	return document{location: location, page: page}, nil
}

// Navigate fetches url and pushes it onto the history.
func (s *HTTPSession) Navigate(ctx context.Context, url string) error {
	if s.closed {
		return ErrSessionClosed
	}
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return err
	}
	s.push(doc)
	return nil
}

// ActivateByLabel follows the href of the link with the given text.
func (s *HTTPSession) ActivateByLabel(ctx context.Context, label string) error {
	target, err := s.link(label)
	if err != nil {
		return err
	}
	return s.Navigate(ctx, target)
}

// Close drops the history and idle connections.
func (s *HTTPSession) Close() error {
	s.close()
	s.client.CloseIdleConnections()
	return nil
}

// WithRequestTimeout sets the per-request timeout of the default client.
func WithRequestTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSession) {
		if d > 0 {
			s.client = &http.Client{Timeout: d, Transport: s.client.Transport}
		}
	}
}
