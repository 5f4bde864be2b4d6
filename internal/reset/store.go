package reset

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists the code -> uid mapping created at issuance. A code maps to
// exactly one uid and is removed when consumed, so commit is single-use.
type Store interface {
	Save(ctx context.Context, code string, uid int64, ttl time.Duration) error
	// Resolve returns the uid the code maps to without invalidating it.
	Resolve(ctx context.Context, code string) (int64, error)
	// Consume returns the uid and atomically removes the code. A second
	// Consume of the same code fails with ErrCodeInvalid.
	Consume(ctx context.Context, code string) (int64, error)
}

// RedisStore implements Store on Redis with per-code TTL keys.
type RedisStore struct {
	redis redis.UniversalClient
}

// NewRedisStore returns a Store backed by the given Redis client.
func NewRedisStore(redisClient redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: redisClient}
}

func (s *RedisStore) Save(ctx context.Context, code string, uid int64, ttl time.Duration) error {
	if err := s.redis.Set(ctx, codeKey(code), strconv.FormatInt(uid, 10), ttl).Err(); err != nil {
		return fmt.Errorf("reset: save code: %w", err)
	}
	return nil
}

func (s *RedisStore) Resolve(ctx context.Context, code string) (int64, error) {
	val, err := s.redis.Get(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCodeInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("reset: resolve code: %w", err)
	}
	return parseUID(val)
}

func (s *RedisStore) Consume(ctx context.Context, code string) (int64, error) {
	val, err := s.redis.GetDel(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCodeInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("reset: consume code: %w", err)
	}
	return parseUID(val)
}

func codeKey(code string) string {
	return "reset:code:" + code
}

func parseUID(val string) (int64, error) {
	uid, err := strconv.ParseInt(val, 10, 64)
	if err != nil || uid <= 0 {
		return 0, ErrCodeInvalid
	}
	return uid, nil
}
