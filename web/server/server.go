package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	actx "go.hackfix.me/vestibule/app/context"
	"go.hackfix.me/vestibule/web/server/api/v1"
	"go.hackfix.me/vestibule/web/server/conn"
	"go.hackfix.me/vestibule/web/server/middleware"
	"go.hackfix.me/vestibule/web/server/types"
)

// Config is the web server configuration.
type Config struct {
	// Address is the network address in [host]:port format to listen on.
	Address string
	// Decorator identifies the session user of requests.
	Decorator *middleware.Decorator
	// Healthcheck reports whether the user store is reachable. It's optional.
	Healthcheck func(context.Context) error
	// ErrorLevel controls how much error detail is exposed to clients.
	ErrorLevel types.ErrorLevel
}

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	logger *slog.Logger
}

// New returns a new web Server instance.
func New(appCtx *actx.Context, cfg Config) *Server {
	logger := appCtx.Logger.With("component", "web-server")
	return &Server{
		Server: &http.Server{
			Handler:           SetupHandlers(appCtx, cfg, logger),
			Addr:              cfg.Address,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      time.Minute,
			BaseContext:       func(net.Listener) context.Context { return appCtx.Ctx },
		},
		logger: logger,
	}
}

// ListenAndServe starts the HTTP server. It stores the actual listen address,
// which is convenient when the address is dynamically determined by the system
// (e.g. ':0').
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started listener", "address", s.Addr)

	//nolint:wrapcheck // This is fine.
	return s.Serve(ln)
}

// SetupHandlers configures the server HTTP handlers.
func SetupHandlers(appCtx *actx.Context, cfg Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1",
		api.SetupHandlers(appCtx, cfg.Decorator, cfg.ErrorLevel, logger)))
	mux.Handle("GET /healthz", conn.Handle(conn.Identity[struct{}](), healthz(cfg.Healthcheck), logger))

	return middleware.Chain(middleware.Logger(logger), mux)
}

func healthz(check func(context.Context) error) conn.Handler[struct{}] {
	return func(c conn.Conn[conn.HeadersOpen, struct{}]) (conn.Conn[conn.HeadersSent, struct{}], error) {
		if check != nil {
			if err := check(c.Request().Context()); err != nil {
				// The error is returned for logging, but not exposed.
				sent, _ := conn.WriteJSON(c, http.StatusServiceUnavailable,
					types.NewServiceUnavailableError("user store is unavailable"))
				return sent, err
			}
		}

		return conn.WriteJSON(c, http.StatusOK, types.NewBaseResponse(http.StatusOK, nil))
	}
}
