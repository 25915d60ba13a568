package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Init creates the database schema and records the application version the
// database was initialized with.
func (d *DB) Init(appVersion string, logger *slog.Logger) error {
	dblogger := logger.With("path", d.path)
	dblogger.Debug("initializing database")

	if err := d.Migrate(d.ctx, dblogger); err != nil {
		return err
	}

	_, err := d.ExecContext(d.ctx, `INSERT INTO _meta (version) VALUES (?)`, appVersion)
	if err != nil {
		return fmt.Errorf("failed inserting into _meta: %w", err)
	}

	dblogger.Info("database initialized")

	return nil
}

// Migrate applies all pending schema migrations.
func (d *DB) Migrate(ctx context.Context, logger *slog.Logger) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, d.DB, d.migrations)
	if err != nil {
		return fmt.Errorf("failed creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed applying migrations: %w", err)
	}

	for _, res := range results {
		logger.Debug("applied migration",
			"version", res.Source.Version, "duration", res.Duration.String())
	}

	return nil
}
