package session

import (
	"context"
	"database/sql"

	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/effect"
)

// Store is the user store consulted by Resolve. FetchUser must not perform
// any I/O until the returned effect is run. A Right(nil) outcome means no user
// has the token.
type Store interface {
	FetchUser(token AccessToken) effect.Effect[effect.Outcome[error, *models.User]]
}

// Resolve returns a deferred lookup of the user that owns the token. An absent
// token resolves to nil without touching the store. Lookup failures also
// resolve to nil: a request with a broken store proceeds anonymously.
func Resolve(s Store, token sql.Null[AccessToken]) effect.Effect[*models.User] {
	if !token.Valid {
		return effect.Pure[*models.User](nil)
	}

	return effect.New(func(ctx context.Context) *models.User {
		return effect.RightOr(s.FetchUser(token.V).Run(ctx), nil)
	})
}
