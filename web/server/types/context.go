package types

import (
	"context"
	"net/http"

	"go.hackfix.me/vestibule/db/models"
)

// RequestContext is the payload of a decorated connection. It carries the
// resolved user, the original request and the payload the connection had
// before decoration. It is immutable: MapContext is the only way to change the
// payload, and it returns a new value.
type RequestContext[A any] struct {
	user *models.User
	req  *http.Request
	data A
}

// NewRequestContext returns a RequestContext. A nil user means that the
// request is anonymous.
func NewRequestContext[A any](user *models.User, req *http.Request, data A) RequestContext[A] {
	return RequestContext[A]{user: user, req: req, data: data}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func (rc RequestContext[A]) CurrentUser() *models.User {
	return rc.user
}

// CurrentRequest returns the request the context was built from.
func (rc RequestContext[A]) CurrentRequest() *http.Request {
	return rc.req
}

// Data returns the original connection payload.
func (rc RequestContext[A]) Data() A {
	return rc.data
}

// MapContext returns a copy of rc with its payload replaced by f(rc.Data()).
// The user and request are kept.
func MapContext[A, B any](rc RequestContext[A], f func(A) B) RequestContext[B] {
	return RequestContext[B]{user: rc.user, req: rc.req, data: f(rc.data)}
}

// WithUser is a payload carrying only the resolved user next to the original
// payload.
type WithUser[A any] struct {
	User *models.User
	Data A
}

// WithUserRequest is a payload carrying the resolved user and the original
// request next to the original payload.
type WithUserRequest[A any] struct {
	User    *models.User
	Request *http.Request
	Data    A
}

type requestContextKey struct{}

// WithRequestContext returns a child context that stores rc.
func WithRequestContext[A any](ctx context.Context, rc RequestContext[A]) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the RequestContext stored in ctx by
// WithRequestContext. The payload type must match the one it was stored with.
func RequestContextFrom[A any](ctx context.Context) (RequestContext[A], bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext[A])
	return rc, ok
}
