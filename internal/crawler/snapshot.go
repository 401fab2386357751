package crawler

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/storycrawl/internal/browser"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
)

// Snapshot is everything the traversal needs from one page, read before
// any navigation so later DOM changes cannot affect it.
type Snapshot struct {
	// Terminal reports the rating page shown after an ending. Only Terminal
	// is set on such a page.
	Terminal bool

	// Heading is the in-page heading.
	Heading string

	// Text is the page body. Empty when the page has none.
	Text string

	// Labels are the distinct choice labels in page order.
	Labels []string
}

// Fingerprint identifies a page's content for the frontier.
type Fingerprint [blake2b.Size256]byte

// String returns the fingerprint in hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Fingerprint hashes the heading and the body. Two pages with equal heading
// and body share a fingerprint.
func (s Snapshot) Fingerprint() Fingerprint {
	return blake2b.Sum256([]byte(s.Heading + "\n" + s.Text))
}

// TakeSnapshot reads the current page. Elements that are absent read as
// empty; any other session failure is returned.
func TakeSnapshot(ctx context.Context, session browser.Session, site Site) (Snapshot, error) {
	marker, err := readOptional(ctx, session, site.TerminalLocator)
	if err != nil {
		return Snapshot{}, err
	}
	if marker != "" && strings.Contains(marker, site.TerminalMarker) {
		return Snapshot{Terminal: true}, nil
	}

	var snap Snapshot
	if snap.Heading, err = readOptional(ctx, session, site.HeadingLocator); err != nil {
		return Snapshot{}, err
	}
	if snap.Text, err = readOptional(ctx, session, site.TextLocator); err != nil {
		return Snapshot{}, err
	}

	labels, err := session.ListChoiceLabels(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list choices: %w", err)
	}
	for _, label := range labels {
		label = norm.NFC.String(strings.TrimSpace(label))
		if label != "" && !slices.Contains(snap.Labels, label) {
			snap.Labels = append(snap.Labels, label)
		}
	}
	return snap, nil
}

func readOptional(ctx context.Context, session browser.Session, locator string) (string, error) {
	text, err := session.ReadText(ctx, locator)
	if errors.Is(err, browser.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", locator, err)
	}
	return norm.NFC.String(text), nil
}
