package browser

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// throttled waits for a token before every call that loads a page.
type throttled struct {
	Session
	limiter *rate.Limiter
}

// Throttle returns a session that loads at most one page per delay. Reads
// are not limited. A zero or negative delay returns s unchanged.
func Throttle(s Session, delay time.Duration) Session {
	if delay <= 0 {
		return s
	}
	return &throttled{
		Session: s,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

func (t *throttled) Navigate(ctx context.Context, url string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.Session.Navigate(ctx, url)
}

func (t *throttled) ActivateByLabel(ctx context.Context, label string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.Session.ActivateByLabel(ctx, label)
}

func (t *throttled) GoBack(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.Session.GoBack(ctx)
}
