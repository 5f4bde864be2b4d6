// Package rate enforces per-identifier attempt budgets using Redis counters.
package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter tuning parameters.
type Config struct {
	// MaxAttempts is the attempt budget per identifier within Window.
	MaxAttempts int
	// Window is how long a counter lives after its first increment.
	Window time.Duration
}

// Limiter enforces per-identifier rate limits using Redis counters with TTL.
// The first increment in a window sets the expiry; subsequent increments reuse it.
type Limiter struct {
	redis  redis.UniversalClient
	prefix string
	config Config
}

// New creates a [Limiter] backed by the given Redis client. prefix namespaces
// the counter keys (e.g. "reset-send").
func New(redisClient redis.UniversalClient, prefix string, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		prefix: prefix,
		config: cfg,
	}
}

// Allow records one attempt for identifier and returns ErrRateLimited when the
// budget is exhausted. The attempt that exceeds the budget is still counted, so
// hammering an identifier keeps extending the window's pressure.
func (l *Limiter) Allow(ctx context.Context, identifier string) error {
	count, err := l.incrementWithTTL(ctx, l.key(identifier), l.config.Window)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter for identifier.
func (l *Limiter) Reset(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, l.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return incr.Val(), nil
}

func (l *Limiter) key(identifier string) string {
	return fmt.Sprintf("rate:%s:%s", l.prefix, identifier)
}
