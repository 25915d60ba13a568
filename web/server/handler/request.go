package handler

import (
	"context"
	"net/http"

	"go.hackfix.me/vestibule/web/server/types"
)

// RequestProcessor runs after authentication and deserialization, and can
// reject the request by returning an error.
type RequestProcessor func(ctx context.Context, req types.Request) (context.Context, error)

// RequireUser rejects anonymous requests with 401 Unauthorized. It must run
// after an Authenticator that sets the session.
func RequireUser(ctx context.Context, req types.Request) (context.Context, error) {
	if req.Session().CurrentUser() == nil {
		return ctx, types.NewError(http.StatusUnauthorized, "a valid session is required")
	}

	return ctx, nil
}
