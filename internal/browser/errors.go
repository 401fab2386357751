package browser

import "errors"

// Session errors.
// ErrNotFound and ErrChoiceUnavailable describe ordinary page churn and are
// recoverable by the caller. The others mean the session can no longer be
// trusted to be on the expected page.
var (
	// ErrNotFound is returned by ReadText when the locator matches nothing.
	ErrNotFound = errors.New("element not found")

	// ErrChoiceUnavailable is returned by ActivateByLabel when no link with
	// the given text can currently be activated.
	ErrChoiceUnavailable = errors.New("choice not available")

	// ErrNoHistory is returned by GoBack on the first page of a session.
	ErrNoHistory = errors.New("no previous page")

	// ErrNavigation is returned when a page cannot be loaded.
	ErrNavigation = errors.New("navigation failed")

	// ErrSessionClosed is returned by any call made after Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrInvalidLocator is returned when a locator is not a valid XPath expression.
	ErrInvalidLocator = errors.New("invalid locator")
)
