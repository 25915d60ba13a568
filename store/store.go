// Package store provides the user stores consulted when resolving session
// access tokens. All of them are deferred: FetchUser does no I/O until the
// returned effect is run.
package store

import (
	"context"
	"errors"

	"go.hackfix.me/vestibule/db/models"
	dbtypes "go.hackfix.me/vestibule/db/types"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/session"
)

// Store is a user store with lifecycle management.
type Store interface {
	session.Store
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the resources owned by the store.
	Close() error
}

// Users is a Store whose users can also be managed.
type Users interface {
	Store
	// AddUser creates a user with a new access token.
	AddUser(ctx context.Context, name string) (*models.User, error)
	// RemoveUser deletes a user and returns its last state.
	RemoveUser(ctx context.Context, name string) (*models.User, error)
	// RotateToken replaces the access token of a user, and returns the
	// previous one.
	RotateToken(ctx context.Context, name string) (session.AccessToken, *models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UserByName(ctx context.Context, name string) (*models.User, error)
	UserByToken(ctx context.Context, token session.AccessToken) (*models.User, error)
}

// Invalidator is implemented by stores that cache lookups. Invalidate must be
// called after a token is rotated or its user is deleted.
type Invalidator interface {
	Invalidate(ctx context.Context, token session.AccessToken) error
}

// fetch runs lookup as a deferred Outcome. A missing user is a successful
// lookup with a nil user, not a failure.
func fetch(lookup func(context.Context) (*models.User, error)) effect.Effect[effect.Outcome[error, *models.User]] {
	return effect.Attempt(func(ctx context.Context) (*models.User, error) {
		u, err := lookup(ctx)
		if errors.As(err, &dbtypes.NoResultError{}) {
			return nil, nil
		}
		return u, err
	})
}
