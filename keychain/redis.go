package keychain

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrBackendUnavailable is returned when the backing store cannot be reached.
var ErrBackendUnavailable = errors.New("keychain backend unavailable")

// RedisKeychain is a [Keychain] backed by Redis, for deployments where host
// app and extension processes share one secure-storage backing. Values are
// stored as-is; wrap with [EncryptedKeychain] when the Redis deployment is
// not itself trusted.
type RedisKeychain struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisKeychain creates a Redis-backed keychain. prefix namespaces every
// key; empty means "akc".
func NewRedisKeychain(client redis.UniversalClient, prefix string) *RedisKeychain {
	if prefix == "" {
		prefix = "akc"
	}
	return &RedisKeychain{redis: client, prefix: prefix}
}

func (k *RedisKeychain) key(key string) string {
	return k.prefix + ":" + key
}

// Get returns the stored value, [ErrNotFound] when absent, or
// [ErrBackendUnavailable] when Redis cannot be reached.
func (k *RedisKeychain) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := k.redis.Get(ctx, k.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return value, nil
}

// Set stores value under key with no expiry. Session credentials live until
// explicitly invalidated, never by TTL.
func (k *RedisKeychain) Set(ctx context.Context, key string, value []byte) error {
	if err := k.redis.Set(ctx, k.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Remove deletes the entry for key. Removing a missing key is not an error.
func (k *RedisKeychain) Remove(ctx context.Context, key string) error {
	if err := k.redis.Del(ctx, k.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}
