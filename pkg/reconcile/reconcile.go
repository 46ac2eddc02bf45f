// Package reconcile converges a client's cached view of billing state with
// the server after an out-of-band update, typically right after a checkout
// redirect. It races a bounded polling loop against a push subscription;
// whichever observes the expected plan tier first wins and both legs are
// torn down.
package reconcile

import (
	"context"
	"time"
)

// Preferences is the wire shape of the server's preferences record.
type Preferences struct {
	UserID               string `json:"user_id"`
	PlanTier             string `json:"plan_tier"`
	Currency             string `json:"currency"`
	Locale               string `json:"locale"`
	StripeCustomerID     string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string `json:"stripe_subscription_id,omitempty"`
}

// Fetcher pulls the current preferences record (the polling leg).
type Fetcher interface {
	Fetch(ctx context.Context) (Preferences, error)
}

// Watcher delivers pushed preference updates (the push leg). The returned
// channel must be closed when ctx is canceled or the connection drops.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Preferences, error)
}

const (
	DefaultInterval = 3 * time.Second
	DefaultDeadline = 60 * time.Second
)

// Reconciler runs both legs until the expected tier is observed or the
// deadline passes. A nil Watcher degrades to polling only.
type Reconciler struct {
	Fetcher  Fetcher
	Watcher  Watcher
	Interval time.Duration
	Deadline time.Duration
}

// Run polls immediately, then on every interval tick, while also consuming
// pushed updates. It returns the last observed preferences and whether the
// expected tier was reached. Expiry is not an error: the caller keeps
// whatever state was last seen (convergence here is an aid, not a
// guarantee). Fetches are strictly sequential; a slow fetch simply delays
// the next tick rather than overlapping it.
func (r *Reconciler) Run(ctx context.Context, expectedTier string) (Preferences, bool) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := r.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var last Preferences

	var pushed <-chan Preferences
	if r.Watcher != nil {
		if ch, err := r.Watcher.Watch(ctx); err == nil {
			pushed = ch
		}
		// A failed watch is not fatal; polling still converges.
	}

	check := func() (Preferences, bool, bool) {
		p, err := r.Fetcher.Fetch(ctx)
		if err != nil {
			return last, false, false
		}
		return p, p.PlanTier == expectedTier, true
	}

	// Immediate refresh before the first tick.
	if p, done, ok := check(); ok {
		last = p
		if done {
			return last, true
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return last, false
		case p, ok := <-pushed:
			if !ok {
				pushed = nil
				continue
			}
			last = p
			if p.PlanTier == expectedTier {
				return last, true
			}
		case <-ticker.C:
			if p, done, ok := check(); ok {
				last = p
				if done {
					return last, true
				}
			}
		}
	}
}
