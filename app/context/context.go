package context

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/vestibule/app/config"
	"go.hackfix.me/vestibule/db"
	"go.hackfix.me/vestibule/store"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx     context.Context  // global context
	FS      vfs.FileSystem   // filesystem
	Env     Environment      // process environment
	Logger  *slog.Logger     // global logger
	TimeNow func() time.Time // current time

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config *config.Config
	DB     *db.DB
	// Users replaces the user store selected by Config in the user and
	// session commands. It's owned by the caller.
	Users store.Users

	// Metadata
	Version     *VersionInfo
	VersionInit string // version the database was initialized with
}
