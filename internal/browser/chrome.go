package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds every single browser action.
const DefaultTimeout = 30 * time.Second

// pendingFlag is set on window before a click. A fresh document does not
// have it, which is how a finished navigation is detected.
const pendingFlag = "__storycrawlPending"

// ChromeOptions configures a ChromeSession.
type ChromeOptions struct {
	// Headless runs Chrome without a window.
	Headless bool

	// ExecPath overrides the Chrome binary. Empty means autodetect.
	ExecPath string

	// UserAgent overrides the browser's user agent.
	UserAgent string

	// Timeout bounds each browser action. Zero means DefaultTimeout.
	Timeout time.Duration

	// ChoiceLocator selects choice items. Empty means DefaultChoiceLocator.
	ChoiceLocator string

	// Cookie and Headers are sent with every request of the tab.
	Cookie  string
	Headers map[string]string
}

// extraHeaders merges the cookie into the extra request headers.
func (o ChromeOptions) extraHeaders() network.Headers {
	if o.Cookie == "" && len(o.Headers) == 0 {
		return nil
	}
	h := make(network.Headers, len(o.Headers)+1)
	for k, v := range o.Headers {
		h[k] = v
	}
	if o.Cookie != "" {
		h["Cookie"] = o.Cookie
	}
	return h
}

// ChromeSession drives one Chrome tab through the DevTools protocol.
type ChromeSession struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	timeout       time.Duration
	choiceLocator string

	// page is the DOM snapshot taken after the last navigation.
	page    *Page
	history int
	closed  bool
}

// NewChromeSession starts a browser and opens a blank tab.
func NewChromeSession(ctx context.Context, opts ChromeOptions) (*ChromeSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser. It must not carry a deadline, or the
	// browser would die with it.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: failed to start chrome: %v", ErrNavigation, err)
	}
	if h := opts.extraHeaders(); h != nil {
		if err := chromedp.Run(browserCtx, network.Enable(), network.SetExtraHTTPHeaders(h)); err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("%w: failed to set request headers: %v", ErrNavigation, err)
		}
	}

	s := &ChromeSession{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       opts.Timeout,
		choiceLocator: opts.ChoiceLocator,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.choiceLocator == "" {
		s.choiceLocator = DefaultChoiceLocator
	}
	return s, nil
}

// run executes actions in the tab under the action timeout, stopping early
// when ctx is canceled.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.closed {
		return ErrSessionClosed
	}
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// snapshot re-reads the DOM of the current document.
func (s *ChromeSession) snapshot(ctx context.Context) error {
	var outer string
	if err := s.run(ctx, chromedp.OuterHTML("html", &outer, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: failed to read document: %v", ErrNavigation, err)
	}
	page, err := ParsePage(strings.NewReader(outer))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	s.page = page
	return nil
}

// CurrentLocation returns the URL shown in the tab.
func (s *ChromeSession) CurrentLocation(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Navigate loads url and waits for its body.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, ErrSessionClosed) || ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}
	s.history++
	return s.snapshot(ctx)
}

// PageTitle returns the document title.
func (s *ChromeSession) PageTitle(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// ReadText reads an element's visible text from the current snapshot.
func (s *ChromeSession) ReadText(_ context.Context, locator string) (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	if s.page == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	return s.page.Text(locator)
}

// ListChoiceLabels lists the choices of the current snapshot.
func (s *ChromeSession) ListChoiceLabels(_ context.Context) ([]string, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.page == nil {
		return nil, nil
	}
	return s.page.List(s.choiceLocator)
}

// clickScript clicks the first link whose rendered text equals the label.
// It evaluates to false when there is no such link.
func clickScript(label string) string {
	return `(() => {
	const want = ` + strconv.Quote(label) + `;
	for (const a of document.querySelectorAll("a")) {
		if (a.innerText.replace(/\s+/g, " ").trim() === want) {
			window.` + pendingFlag + ` = true;
			a.click();
			return true;
		}
	}
	return false;
})()`
}

const loadedScript = `window.` + pendingFlag + ` === undefined && document.readyState === "complete"`

// ActivateByLabel clicks the link with the given text and waits for the
// next document to finish loading.
func (s *ChromeSession) ActivateByLabel(ctx context.Context, label string) error {
	var clicked bool
	if err := s.run(ctx, chromedp.Evaluate(clickScript(label), &clicked)); err != nil {
		return fmt.Errorf("%w: click %q: %v", ErrNavigation, label, err)
	}
	if !clicked {
		return fmt.Errorf("%w: %q", ErrChoiceUnavailable, label)
	}

	var loaded bool
	err := s.run(ctx, chromedp.Poll(loadedScript, &loaded,
		chromedp.WithPollingTimeout(s.timeout),
		chromedp.WithPollingInterval(50*time.Millisecond),
	))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: waiting after %q: %v", ErrNavigation, label, err)
	}
	s.history++
	return s.snapshot(ctx)
}

// GoBack navigates one entry back in the tab's history.
func (s *ChromeSession) GoBack(ctx context.Context) error {
	if s.history <= 1 {
		return ErrNoHistory
	}
	if err := s.run(ctx,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: back: %v", ErrNavigation, err)
	}
	s.history--
	return s.snapshot(ctx)
}

// Close shuts the browser down.
func (s *ChromeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close chrome: %w", err)
	}
	return nil
}
