package browser

import "context"

// Session is a single stateful browser tab.
//
// All calls act on the page currently displayed. Sessions are not safe for
// concurrent use; a crawl owns its session for its whole lifetime.
type Session interface {
	// CurrentLocation returns the URL of the current page.
	CurrentLocation(ctx context.Context) (string, error)

	// Navigate loads url. Transport and HTTP failures wrap ErrNavigation.
	Navigate(ctx context.Context, url string) error

	// PageTitle returns the document title of the current page.
	PageTitle(ctx context.Context) (string, error)

	// ReadText returns the visible text of the first element matching the
	// XPath locator, or ErrNotFound.
	ReadText(ctx context.Context, locator string) (string, error)

	// ListChoiceLabels returns the visible text of every choice on the page,
	// in document order.
	ListChoiceLabels(ctx context.Context) ([]string, error)

	// ActivateByLabel follows the link whose visible text equals label.
	// It returns ErrChoiceUnavailable when there is no such link.
	ActivateByLabel(ctx context.Context, label string) error

	// GoBack returns to the previous page, or fails with ErrNoHistory.
	GoBack(ctx context.Context) error

	// Close releases the session's resources.
	Close() error
}

// DefaultChoiceLocator selects the choice list items of a story page.
const DefaultChoiceLocator = "/html/body/div[3]/ul/li"
