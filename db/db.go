package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	//nolint:revive,nolintlint // Registers the "sqlite" driver.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/vestibule/db/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pragmas are applied on every opened database.
var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	// Writes from the CLI can overlap with lookups of a running server.
	"PRAGMA busy_timeout = 5000",
}

// DB is the SQLite database holding Vestibule users. It carries the context
// and clock used by model operations.
type DB struct {
	*sql.DB
	ctx        context.Context
	timeNow    func() time.Time
	path       string
	migrations fs.FS
}

var _ types.Querier = (*DB)(nil)

// Open opens the SQLite database at path, which can also be an in-memory DSN.
// The schema is created by Init.
func Open(ctx context.Context, path string, timeNow func() time.Time) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	// An in-memory database disappears with its last connection, so at least
	// one must stay idle in the pool.
	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	for _, p := range pragmas {
		if _, err = sqlDB.ExecContext(ctx, p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed applying '%s': %w", p, err)
		}
	}

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed loading migrations: %w", err)
	}

	return &DB{DB: sqlDB, ctx: ctx, path: path, timeNow: timeNow, migrations: migrations}, nil
}

// NewContext returns the context model operations run with.
func (d *DB) NewContext() context.Context {
	return d.ctx
}

// Path returns the path or DSN the database was opened with.
func (d *DB) Path() string {
	return d.path
}

// TimeNow returns the current time of the database clock.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}
