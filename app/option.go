package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/vestibule/app/config"
	actx "go.hackfix.me/vestibule/app/context"
	"go.hackfix.me/vestibule/db"
	"go.hackfix.me/vestibule/store"
)

// Option configures an App before it runs.
type Option func(*App)

// WithConfig skips loading the configuration file, and uses c instead.
func WithConfig(c *config.Config) Option {
	return func(app *App) { app.ctx.Config = c }
}

// WithContext sets the context that bounds the lifetime of every command.
func WithContext(ctx context.Context) Option {
	return func(app *App) { app.ctx.Ctx = ctx }
}

// WithDB injects an already opened database. Without it, a SQLite database is
// opened in the data directory on every run.
func WithDB(d *db.DB) Option {
	return func(app *App) { app.ctx.DB = d }
}

// WithUsers makes the user and session commands manage users in u instead of
// the store selected by the configuration.
func WithUsers(u store.Users) Option {
	return func(app *App) { app.ctx.Users = u }
}

// WithEnv sets the source of environment variables, such as the session
// secrets.
func WithEnv(env actx.Environment) Option {
	return func(app *App) { app.ctx.Env = env }
}

// WithFDs sets the standard streams.
func WithFDs(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *App) {
		app.ctx.Stdin, app.ctx.Stdout, app.ctx.Stderr = stdin, stdout, stderr
	}
}

// WithFS sets the filesystem the configuration file is read from.
func WithFS(fs vfs.FileSystem) Option {
	return func(app *App) { app.ctx.FS = fs }
}

// WithLogger writes logs to stderr with a level that can be changed from the
// command line. It must come after WithFDs. Colors are enabled only if color
// is true, which should be the case when stderr is a terminal.
func WithLogger(color bool) Option {
	return func(app *App) {
		app.logLevel = &slog.LevelVar{}
		app.ctx.Logger = slog.New(tint.NewHandler(app.ctx.Stderr, &tint.Options{
			Level:      app.logLevel,
			NoColor:    !color,
			TimeFormat: time.DateTime + ".000",
		}))
		slog.SetDefault(app.ctx.Logger)
	}
}

// WithTimeNow overrides the clock, which is used for timestamps and session
// expiration.
func WithTimeNow(timeNow func() time.Time) Option {
	return func(app *App) { app.ctx.TimeNow = timeNow }
}
