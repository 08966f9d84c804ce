package keychain

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisKeychainTest(t *testing.T) (*RedisKeychain, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisKeychain(rdb, "akc"), func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisKeychainRoundTrip(t *testing.T) {
	kc, done := newRedisKeychainTest(t)
	defer done()
	ctx := context.Background()

	if _, err := kc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found sentinel, got %v", err)
	}

	value := []byte{0, 1, 2, 0xFF}
	if err := kc.Set(ctx, "k1", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := kc.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("got %v, want %v", got, value)
	}

	if err := kc.Remove(ctx, "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := kc.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found after remove, got %v", err)
	}
	// Removing again is a no-op.
	if err := kc.Remove(ctx, "k1"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestRedisKeychainUnavailableSentinel(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kc := NewRedisKeychain(rdb, "")
	mr.Close()

	if _, err := kc.Get(context.Background(), "k1"); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
	if err := kc.Set(context.Background(), "k1", []byte("v")); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}
