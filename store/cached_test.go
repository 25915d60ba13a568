package store_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/vestibule/db/models"
	"go.hackfix.me/vestibule/effect"
	"go.hackfix.me/vestibule/store"
)

type fakeCache struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return redis.NewStringResult("", c.getErr)
	}
	v, ok := c.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return redis.NewStatusResult("", c.setErr)
	}
	c.data[key] = string(value.([]byte))
	c.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *fakeCache) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (c *fakeCache) Close() error { return nil }

func (c *fakeCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

func TestCached(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	alice := &models.User{ID: 1, UUID: "u1", Name: "alice", AccessToken: "t1", CreatedAt: created, UpdatedAt: created}
	logger := slog.New(slog.DiscardHandler)

	t.Run("ok/read_through", func(t *testing.T) {
		t.Parallel()

		backend := &countingStore{user: alice}
		cache := newFakeCache()
		s := store.NewCached(backend, cache, time.Minute, logger)

		e := s.FetchUser("t1")
		assert.Equal(t, 0, backend.Calls())
		assert.Empty(t, cache.Keys())

		u := effect.RightOr(e.Run(t.Context()), nil)
		assert.Same(t, alice, u)
		assert.Equal(t, 1, backend.Calls())

		keys := cache.Keys()
		require.Len(t, keys, 1)
		assert.True(t, strings.HasPrefix(keys[0], "vestibule:user:"))
		assert.NotContains(t, keys[0], "t1")
		assert.Equal(t, time.Minute, cache.ttls[keys[0]])

		// Served from the cache.
		u = effect.RightOr(s.FetchUser("t1").Run(t.Context()), nil)
		require.NotNil(t, u)
		assert.Equal(t, *alice, *u)
		assert.Equal(t, 1, backend.Calls())

		require.NoError(t, s.Invalidate(t.Context(), "t1"))
		assert.Empty(t, cache.Keys())
		effect.RightOr(s.FetchUser("t1").Run(t.Context()), nil)
		assert.Equal(t, 2, backend.Calls())
	})

	t.Run("ok/not_found_not_cached", func(t *testing.T) {
		t.Parallel()

		backend := &countingStore{}
		cache := newFakeCache()
		s := store.NewCached(backend, cache, time.Minute, logger)

		out := s.FetchUser("t1").Run(t.Context())
		assert.True(t, out.IsRight())
		assert.Nil(t, effect.RightOr(out, nil))
		assert.Empty(t, cache.Keys())
	})

	t.Run("ok/failure_not_cached", func(t *testing.T) {
		t.Parallel()

		backend := &countingStore{err: errors.New("db down")}
		cache := newFakeCache()
		s := store.NewCached(backend, cache, time.Minute, logger)

		out := s.FetchUser("t1").Run(t.Context())
		assert.True(t, out.IsLeft())
		assert.Empty(t, cache.Keys())
	})

	t.Run("ok/cache_unavailable", func(t *testing.T) {
		t.Parallel()

		backend := &countingStore{user: alice}
		cache := newFakeCache()
		cache.getErr = errors.New("connection refused")
		cache.setErr = errors.New("connection refused")
		s := store.NewCached(backend, cache, time.Minute, logger)

		u := effect.RightOr(s.FetchUser("t1").Run(t.Context()), nil)
		assert.Same(t, alice, u)
		assert.Equal(t, 1, backend.Calls())
		require.NoError(t, s.Ping(t.Context()))
	})
}
