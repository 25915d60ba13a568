package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/session"
)

const cacheKeyPrefix = "vestibule:user:"

// Cache is the subset of *redis.Client used by Cached.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Cached is a read-through Redis cache in front of another store. Only found
// users are cached. Cache failures are logged and fall through to the wrapped
// store.
type Cached struct {
	Store
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

var (
	_ Store       = (*Cached)(nil)
	_ Invalidator = (*Cached)(nil)
)

// NewCached returns a store that caches users found in s for ttl.
func NewCached(s Store, cache Cache, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		Store:  s,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "user-cache"),
	}
}

// cachedUser is the cache record of a user. models.User hides some fields
// from its JSON encoding, so it can't be used directly.
type cachedUser struct {
	ID          uint64    `json:"id"`
	UUID        string    `json:"uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	AccessToken string    `json:"access_token"`
}

// cacheKey never contains the token itself.
func cacheKey(token session.AccessToken) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// FetchUser implements session.Store.
func (c *Cached) FetchUser(token session.AccessToken) effect.Effect[effect.Outcome[error, *models.User]] {
	return effect.New(func(ctx context.Context) effect.Outcome[error, *models.User] {
		key := cacheKey(token)

		if u, err := c.get(ctx, key); err == nil {
			return effect.Success[error](u)
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("failed reading cached user", "error", err.Error())
		}

		out := c.Store.FetchUser(token).Run(ctx)
		if u, ok := out.GetRight(); ok && u != nil {
			if err := c.set(ctx, key, u); err != nil {
				c.logger.Warn("failed caching user", "error", err.Error())
			}
		}

		return out
	})
}

func (c *Cached) get(ctx context.Context, key string) (*models.User, error) {
	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err //nolint:wrapcheck // redis.Nil is checked by the caller.
	}

	var cu cachedUser
	if err = json.Unmarshal(data, &cu); err != nil {
		return nil, fmt.Errorf("failed decoding cached user: %w", err)
	}

	return &models.User{
		ID: cu.ID, UUID: cu.UUID, CreatedAt: cu.CreatedAt, UpdatedAt: cu.UpdatedAt,
		Name: cu.Name, AccessToken: cu.AccessToken,
	}, nil
}

func (c *Cached) set(ctx context.Context, key string, u *models.User) error {
	data, err := json.Marshal(cachedUser{
		ID: u.ID, UUID: u.UUID, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
		Name: u.Name, AccessToken: u.AccessToken,
	})
	if err != nil {
		return fmt.Errorf("failed encoding user: %w", err)
	}

	return c.cache.Set(ctx, key, data, c.ttl).Err() //nolint:wrapcheck // Wrapped by caller.
}

// Invalidate removes the cached user of token.
func (c *Cached) Invalidate(ctx context.Context, token session.AccessToken) error {
	if err := c.cache.Del(ctx, cacheKey(token)).Err(); err != nil {
		return fmt.Errorf("failed invalidating cached user: %w", err)
	}
	return nil
}

// Ping implements Store. Both the cache and the wrapped store must be
// reachable.
func (c *Cached) Ping(ctx context.Context) error {
	if err := c.cache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed pinging cache: %w", err)
	}
	return c.Store.Ping(ctx)
}

// Close implements Store.
func (c *Cached) Close() error {
	return errors.Join(c.cache.Close(), c.Store.Close())
}
