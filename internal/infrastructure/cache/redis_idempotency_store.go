package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces idempotency keys in a shared Redis
	DefaultKeyPrefix = "ledger:idempotency:"

	pingTimeout = 5 * time.Second
)

// RedisIdempotencyStore shares claimed keys across instances through Redis
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisOptions holds what the store needs to reach Redis
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisIdempotencyStore connects to Redis and verifies it with PING
func NewRedisIdempotencyStore(ctx context.Context, opts RedisOptions) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return NewRedisIdempotencyStoreWithClient(client, opts.KeyPrefix), nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client
func NewRedisIdempotencyStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisIdempotencyStore) key(k string) string {
	return s.keyPrefix + k
}

// MarkProcessed claims key with SET NX and the given expiry
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

// IsProcessed checks whether key is currently claimed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Release deletes the claim on key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
