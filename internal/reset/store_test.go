package reset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestStoreSaveResolveConsume(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "code-1", 42, time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	uid, err := store.Resolve(ctx, "code-1")
	if err != nil || uid != 42 {
		t.Fatalf("Resolve = (%d, %v), want (42, nil)", uid, err)
	}
	// Resolve does not invalidate.
	if uid, err = store.Resolve(ctx, "code-1"); err != nil || uid != 42 {
		t.Fatalf("second Resolve = (%d, %v)", uid, err)
	}

	uid, err = store.Consume(ctx, "code-1")
	if err != nil || uid != 42 {
		t.Fatalf("Consume = (%d, %v), want (42, nil)", uid, err)
	}
	// Consume is single use.
	if _, err = store.Consume(ctx, "code-1"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("second Consume err = %v, want ErrCodeInvalid", err)
	}
	if _, err = store.Resolve(ctx, "code-1"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("Resolve after Consume err = %v, want ErrCodeInvalid", err)
	}
}

func TestStoreUnknownCode(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Resolve(context.Background(), "nope"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("Resolve err = %v, want ErrCodeInvalid", err)
	}
	if _, err := store.Consume(context.Background(), "nope"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("Consume err = %v, want ErrCodeInvalid", err)
	}
}

func TestStoreCodeExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "code-ttl", 7, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Consume(ctx, "code-ttl"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("Consume after expiry err = %v, want ErrCodeInvalid", err)
	}
}

func TestStoreCorruptValue(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Set("reset:code:bad", "not-a-uid")
	if _, err := store.Resolve(context.Background(), "bad"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("Resolve err = %v, want ErrCodeInvalid", err)
	}
}
