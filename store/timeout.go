package store

import (
	"context"
	"time"

	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/session"
)

// Timeout bounds every lookup of the wrapped store. A lookup that doesn't
// finish in time fails with context.DeadlineExceeded, which resolves to an
// anonymous request.
type Timeout struct {
	Store
	timeout time.Duration
}

// WithTimeout wraps s so that lookups are cancelled after d.
func WithTimeout(s Store, d time.Duration) *Timeout {
	return &Timeout{Store: s, timeout: d}
}

// FetchUser implements session.Store.
func (s *Timeout) FetchUser(token session.AccessToken) effect.Effect[effect.Outcome[error, *models.User]] {
	return effect.New(func(ctx context.Context) effect.Outcome[error, *models.User] {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.Store.FetchUser(token).Run(ctx)
	})
}

// Invalidate implements Invalidator if the wrapped store does.
func (s *Timeout) Invalidate(ctx context.Context, token session.AccessToken) error {
	if inv, ok := s.Store.(Invalidator); ok {
		return inv.Invalidate(ctx, token)
	}
	return nil
}
