package api

import (
	"context"
	"net/http"

	"go.hackfix.me/vestibule/web/server/conn"
	"go.hackfix.me/vestibule/web/server/types"
)

// Whoami reports whether the request carries a valid session, and for which
// user. Anonymous requests are answered too.
func (h *Handler) Whoami(
	c conn.Conn[conn.HeadersOpen, types.RequestContext[struct{}]],
) (conn.Conn[conn.HeadersSent, types.RequestContext[struct{}]], error) {
	user := c.Data().CurrentUser()
	c = conn.SetHeader(c, "Cache-Control", "no-store")

	return conn.WriteJSON(c, http.StatusOK, types.WhoamiResponse{
		Authenticated: user != nil,
		User:          user,
	})
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(_ context.Context, req *types.MeRequest) (*types.MeResponse, error) {
	return types.NewMeResponse(req.CurrentUser()), nil
}
