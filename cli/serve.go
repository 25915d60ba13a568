package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	actx "go.hackfix.me/vestibule/app/context"
	aerrors "go.hackfix.me/vestibule/app/errors"
	"go.hackfix.me/vestibule/store"
	"go.hackfix.me/vestibule/web/server"
	"go.hackfix.me/vestibule/web/server/middleware"
	stypes "go.hackfix.me/vestibule/web/server/types"
)

// Serve starts the web server.
type Serve struct {
	Address string `arg:"" optional:"" help:"[host]:port to listen on"`
	//nolint:lll // Long struct tags are unavoidable.
	ErrorLevel string `help:"Detail level of error messages returned to clients. This doesn't affect response status codes. Valid values: none, minimal, full \n none: hide all error messages; minimal: hide server error messages; full: keep error messages intact"`
}

// Run the serve command.
func (c *Serve) Run(appCtx *actx.Context) error {
	errLvl, err := stypes.ErrorLevelFromString(c.ErrorLevel)
	if err != nil {
		return aerrors.NewRuntimeError("invalid error level", err, "")
	}

	verifier, err := newVerifier(appCtx)
	if err != nil {
		return err
	}

	logger := appCtx.Logger
	st, err := store.New(appCtx.Ctx, appCtx.Config.StoreConfig(), appCtx.DB, logger)
	if err != nil {
		return aerrors.NewRuntimeError("failed setting up the user store", err, "")
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed closing the user store", "error", cerr.Error())
		}
	}()

	srv := server.New(appCtx, server.Config{
		Address:     c.Address,
		Decorator:   middleware.NewDecorator(verifier, st, logger),
		Healthcheck: st.Ping,
		ErrorLevel:  errLvl,
	})

	// Stop on SIGINT/SIGTERM or when the app context ends. In-flight requests
	// get up to 10s to finish.
	srvDone := make(chan error, 1)
	go func() {
		srvErr := srv.ListenAndServe()
		logger.Debug("web server shutdown")
		srvDone <- srvErr
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case s := <-sigCh:
		logger.Debug("process received signal", "signal", s)
	case <-appCtx.Ctx.Done():
		logger.Debug("app context is done")
	case srvErr := <-srvDone:
		if srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", srvErr)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(appCtx.Ctx), 10*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed shutting down web server: %w", err)
	}

	return nil
}
