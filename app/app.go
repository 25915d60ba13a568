package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/vestibule/app/config"
	actx "go.hackfix.me/vestibule/app/context"
	aerrors "go.hackfix.me/vestibule/app/errors"
	"go.hackfix.me/vestibule/cli"
	"go.hackfix.me/vestibule/db"
	"go.hackfix.me/vestibule/db/queries"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// Set from --log-level. Nil unless WithLogger was used.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath, dataDir string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(app.ctx, configFilePath, dataDir, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if app.ctx.Config == nil {
		cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
		if err := cfg.Load(); err != nil {
			return aerrors.NewRuntimeError("failed loading configuration", err, "")
		}
		app.ctx.Config = cfg
	}
	app.ctx.Config.SetDefaults()
	app.cli.ApplyConfig(app.ctx.Config)

	if app.ctx.DB == nil {
		if err := app.ctx.FS.MkdirAll(app.cli.DataDir, 0o700); err != nil {
			return aerrors.NewRuntimeError("failed creating data directory", err, "")
		}
		dbPath := filepath.Join(app.cli.DataDir, fmt.Sprintf("%s.db", app.name))
		d, err := db.Open(app.ctx.Ctx, dbPath, app.ctx.TimeNow)
		if err != nil {
			return aerrors.NewRuntimeError("failed opening database", err, "")
		}
		app.ctx.DB = d
		defer func() {
			_ = d.Close()
			app.ctx.DB = nil
		}()
	}

	if err := app.loadInitVersion(); err != nil {
		return err
	}

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

// loadInitVersion reads the version the database was initialized with, and
// fails early for commands that need an initialized database.
func (app *App) loadInitVersion() error {
	ver, err := queries.Version(app.ctx.DB.NewContext(), app.ctx.DB)
	if err != nil {
		return aerrors.NewRuntimeError("failed reading database version", err, "")
	}
	if ver.Valid {
		app.ctx.VersionInit = ver.V
		return nil
	}

	if app.cli.RequiresInit() {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("%s isn't initialized", app.name),
			errors.New("missing database schema"),
			fmt.Sprintf("run '%s init' first", app.name),
		)
	}

	return nil
}
