package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/session"
	"go.hackfix.me/vestibule/web/server/conn"
	"go.hackfix.me/vestibule/web/server/types"
)

// Decorator attaches the user identified by the request's session cookie to
// connections. It holds only read-only state, and is safe for concurrent use.
type Decorator struct {
	verifier *session.Verifier
	store    session.Store
}

// NewDecorator returns a Decorator that verifies session cookies with v and
// looks up users in s. Failed lookups are logged at debug level, and are
// otherwise treated as anonymous requests.
func NewDecorator(v *session.Verifier, s session.Store, logger *slog.Logger) *Decorator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decorator{
		verifier: v,
		store:    &loggingStore{next: s, logger: logger},
	}
}

// User returns a deferred lookup of the user that owns the request's session.
// Neither the cookie verification nor the store lookup happen until the
// effect is run.
func (d *Decorator) User(r *http.Request) effect.Effect[*models.User] {
	token := effect.New(func(context.Context) sql.Null[session.AccessToken] {
		return d.verifier.Token(r)
	})

	return effect.FlatMap(token, func(t sql.Null[session.AccessToken]) effect.Effect[*models.User] {
		return session.Resolve(d.store, t)
	})
}

// Decorate wraps the payload of c into a types.RequestContext carrying the
// session user and the request. The header state of c is preserved, and the
// store is consulted at most once, when the effect is run.
func Decorate[A any](d *Decorator, c conn.Conn[conn.HeadersOpen, A]) effect.Effect[conn.Conn[conn.HeadersOpen, types.RequestContext[A]]] {
	return effect.Map(d.User(c.Request()),
		func(u *models.User) conn.Conn[conn.HeadersOpen, types.RequestContext[A]] {
			return conn.Map(c, func(data A) types.RequestContext[A] {
				return types.NewRequestContext(u, c.Request(), data)
			})
		})
}

// CurrentUser wraps the payload of c into a types.WithUser.
func CurrentUser[A any](d *Decorator, c conn.Conn[conn.HeadersOpen, A]) effect.Effect[conn.Conn[conn.HeadersOpen, types.WithUser[A]]] {
	return effect.Map(d.User(c.Request()),
		func(u *models.User) conn.Conn[conn.HeadersOpen, types.WithUser[A]] {
			return conn.Map(c, func(data A) types.WithUser[A] {
				return types.WithUser[A]{User: u, Data: data}
			})
		})
}

// CurrentUserRequest wraps the payload of c into a types.WithUserRequest.
func CurrentUserRequest[A any](d *Decorator, c conn.Conn[conn.HeadersOpen, A]) effect.Effect[conn.Conn[conn.HeadersOpen, types.WithUserRequest[A]]] {
	return effect.Map(d.User(c.Request()),
		func(u *models.User) conn.Conn[conn.HeadersOpen, types.WithUserRequest[A]] {
			return conn.Map(c, func(data A) types.WithUserRequest[A] {
				return types.WithUserRequest[A]{User: u, Request: c.Request(), Data: data}
			})
		})
}

// Decoration returns Decorate as a conn.Decoration, for use with conn.Handle.
func Decoration[A any](d *Decorator) conn.Decoration[A, types.RequestContext[A]] {
	return func(c conn.Conn[conn.HeadersOpen, A]) effect.Effect[conn.Conn[conn.HeadersOpen, types.RequestContext[A]]] {
		return Decorate(d, c)
	}
}

type loggingStore struct {
	next   session.Store
	logger *slog.Logger
}

func (s *loggingStore) FetchUser(token session.AccessToken) effect.Effect[effect.Outcome[error, *models.User]] {
	return effect.Map(s.next.FetchUser(token),
		func(out effect.Outcome[error, *models.User]) effect.Outcome[error, *models.User] {
			if err, ok := out.GetLeft(); ok {
				s.logger.Debug("user lookup failed, continuing anonymously", "error", err.Error())
			}
			return out
		})
}
