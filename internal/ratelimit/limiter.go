package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 10
	defaultWindow = 15 * time.Minute
)

// Limiter is a fixed-window request counter in Redis, keyed per client IP
// and purpose. Window expiry is handled by key TTL.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		limit:  defaultLimit,
		window: defaultWindow,
	}
}

func limiterKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// Check reports whether the IP has exceeded the window limit for a purpose.
func (l *Limiter) Check(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, limiterKey(ip, purpose)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= l.limit, nil
}

// Record counts a request against the IP's window, starting the window on
// the first request.
func (l *Limiter) Record(ctx context.Context, ip, purpose string) error {
	key := limiterKey(ip, purpose)

	pipe := l.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	return nil
}
