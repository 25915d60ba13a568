package api

import (
	"log/slog"
	"net/http"

	actx "go.hackfix.me/vestibule/app/context"
	"go.hackfix.me/vestibule/web/server/conn"
	"go.hackfix.me/vestibule/web/server/handler"
	"go.hackfix.me/vestibule/web/server/middleware"
	"go.hackfix.me/vestibule/web/server/types"
)

// Handler is the API endpoint handler.
type Handler struct {
	appCtx *actx.Context
	logger *slog.Logger
}

// SetupHandlers configures the web API handlers.
func SetupHandlers(
	appCtx *actx.Context, dec *middleware.Decorator, errLvl types.ErrorLevel, logger *slog.Logger,
) http.Handler {
	h := Handler{appCtx: appCtx, logger: logger}
	mux := http.NewServeMux()

	mux.Handle("GET /whoami", conn.Handle(middleware.Decoration[struct{}](dec), h.Whoami, logger))

	mePipeline := handler.NewPipeline().
		Auth(handler.SessionAuth(dec)).
		ErrorLevel(errLvl).
		Logger(logger).
		ProcessRequest(handler.RequireUser).
		ProcessResponse(handler.NoStore)
	mux.Handle("GET /me", middleware.Chain(
		middleware.Identify(dec),
		handler.Handle(h.Me, mePipeline),
	))

	return mux
}
