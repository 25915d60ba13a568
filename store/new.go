package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.hackfix.me/vestibule/db"
	"go.hackfix.me/vestibule/db/pg"
)

// Type is the user store backend.
type Type string

const (
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
)

// TypeFromString parses a store Type.
func TypeFromString(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeSQLite, TypePostgres:
		return t, nil
	default:
		return "", fmt.Errorf("invalid store type '%s'; valid values: sqlite, postgres", s)
	}
}

// Config selects and configures the user store.
type Config struct {
	Type        Type
	PostgresDSN string
	// RedisURL enables the Redis user cache if set.
	RedisURL string
	CacheTTL time.Duration
	// LookupTimeout bounds every user lookup if positive.
	LookupTimeout time.Duration
}

// New returns the user store selected by cfg, with the caching and timeout
// layers it configures. The SQLite store uses d, which must be open. The
// Postgres schema is migrated on startup.
func New(ctx context.Context, cfg Config, d *db.DB, logger *slog.Logger) (Store, error) {
	if cfg.RedisURL != "" && cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("invalid cache TTL '%s'; it must be positive", cfg.CacheTTL)
	}

	users, err := OpenUsers(ctx, cfg, d, logger)
	if err != nil {
		return nil, err
	}
	var s Store = users

	if cfg.RedisURL != "" {
		rdb, err := ConnectRedis(ctx, cfg.RedisURL, 3, time.Second)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s = NewCached(s, rdb, cfg.CacheTTL, logger)
	}

	if cfg.LookupTimeout > 0 {
		s = WithTimeout(s, cfg.LookupTimeout)
	}

	return s, nil
}

// OpenUsers returns the bare user store selected by cfg. The Postgres store
// uses the clock of d, if it's set.
func OpenUsers(ctx context.Context, cfg Config, d *db.DB, logger *slog.Logger) (Users, error) {
	switch cfg.Type {
	case TypePostgres:
		timeNow := time.Now
		if d != nil {
			timeNow = d.TimeNow
		}
		return newPostgres(ctx, cfg, timeNow, logger)
	case TypeSQLite, "":
		if d == nil {
			return nil, fmt.Errorf("the sqlite store requires an open database")
		}
		return NewSQLite(d), nil
	default:
		return nil, fmt.Errorf("unsupported store type '%s'", cfg.Type)
	}
}

func newPostgres(
	ctx context.Context, cfg Config, timeNow func() time.Time, logger *slog.Logger,
) (*Postgres, error) {
	pool, err := pg.Connect(ctx, pg.DefaultConfig(cfg.PostgresDSN))
	if err != nil {
		return nil, err
	}

	if err = pg.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return NewPostgres(pool, timeNow), nil
}
