package pg

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	ErrEmptyConnectionString   = errors.New("empty postgres connection string")
	ErrFailedToParseDBConfig   = errors.New("failed to parse db config")
	ErrFailedToOpenConnection  = errors.New("failed to open db connection")
	ErrHealthcheckFailed       = errors.New("healthcheck failed, connection is not available")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
)

// Config is the connection pool configuration.
type Config struct {
	ConnectionString string
	MaxConns         int32
	MaxConnIdleTime  time.Duration
	MaxConnLifetime  time.Duration
	RetryAttempts    int
	RetryInterval    time.Duration
}

// DefaultConfig returns the pool configuration for the given DSN.
func DefaultConfig(dsn string) Config {
	return Config{
		ConnectionString: dsn,
		MaxConns:         10,
		MaxConnIdleTime:  10 * time.Minute,
		MaxConnLifetime:  30 * time.Minute,
		RetryAttempts:    3,
		RetryInterval:    2 * time.Second,
	}
}

// Connect creates a connection pool and waits until the database responds to
// a ping, retrying up to cfg.RetryAttempts times.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ConnectionString == "" {
		return nil, ErrEmptyConnectionString
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToOpenConnection, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			lastErr = err
			continue
		}
		if err = pool.Ping(ctx); err != nil {
			pool.Close()
			lastErr = err
			continue
		}

		return pool, nil
	}

	return nil, errors.Join(ErrFailedToOpenConnection, lastErr)
}

// Healthcheck returns a function that pings the database.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Migrate applies the embedded schema migrations to the database.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed getting migrations directory: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	for _, res := range results {
		logger.Debug("applied migration",
			"version", res.Source.Version, "duration", res.Duration.String())
	}

	return nil
}
