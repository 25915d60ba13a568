package middleware

import (
	"net/http"

	"go.hackfix.me/vestibule/web/server/conn"
	"go.hackfix.me/vestibule/web/server/types"
)

// Identify decorates every request with the session user, and stores the
// resulting types.RequestContext[struct{}] in the request context, where
// downstream handlers can retrieve it with types.RequestContextFrom. The
// decoration runs once per request, before next is called. Requests are
// never rejected here; handlers that need a user reject anonymous requests
// themselves, e.g. with handler.RequireUser.
func Identify(d *Decorator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := Decorate(d, conn.Open(w, r, struct{}{})).Run(r.Context())
			ctx := types.WithRequestContext(r.Context(), c.Data())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
