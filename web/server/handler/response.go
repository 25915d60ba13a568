package handler

import (
	"context"

	"go.hackfix.me/vestibule/web/server/types"
)

// ResponseProcessor runs on every response before it's written, including
// error responses. It can change the response headers and status.
type ResponseProcessor func(ctx context.Context, resp types.Response) (context.Context, error)

// NoStore prevents clients and proxies from caching the response. Responses
// that depend on the session user should never be cached.
func NoStore(ctx context.Context, resp types.Response) (context.Context, error) {
	resp.GetHeader().Set("Cache-Control", "no-store")
	resp.GetHeader().Add("Vary", "Cookie")

	return ctx, nil
}
