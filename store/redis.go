package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyRedisURL      = errors.New("empty redis connection URL")
	ErrFailedToParseRedis = errors.New("failed to parse redis connection URL")
	ErrRedisNotReady      = errors.New("redis did not become ready")
)

// ConnectRedis creates a Redis client and waits until it responds to a ping,
// retrying up to attempts times.
func ConnectRedis(ctx context.Context, url string, attempts int, interval time.Duration) (*redis.Client, error) {
	if url == "" {
		return nil, ErrEmptyRedisURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedis, err)
	}

	client := redis.NewClient(opts)

	var lastErr error
	for i := range max(attempts, 1) {
		if i > 0 {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, errors.Join(ErrRedisNotReady, ctx.Err())
			case <-time.After(interval):
			}
		}
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
	}

	_ = client.Close()

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}
