package handler

import (
	"context"

	"go.hackfix.me/vestibule/web/server/middleware"
	"go.hackfix.me/vestibule/web/server/types"
)

// Authenticator identifies the client of a request. It sets the request
// session, and can reject the request by returning an error.
type Authenticator func(context.Context, types.Request) (context.Context, error)

// SessionAuth creates an authenticator that sets the request session from the
// session cookie. If the request was already decorated by the Identify
// middleware, its result is reused, otherwise the decoration is run here. It
// never fails: requests without a valid session proceed anonymously.
func SessionAuth(d *middleware.Decorator) Authenticator {
	return func(ctx context.Context, req types.Request) (context.Context, error) {
		rc, ok := types.RequestContextFrom[struct{}](ctx)
		if !ok {
			r := req.GetHTTPRequest()
			rc = types.NewRequestContext(d.User(r).Run(ctx), r, struct{}{})
			ctx = types.WithRequestContext(ctx, rc)
		}
		req.SetSession(rc)

		return ctx, nil
	}
}
