package cache

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks a store implementation from configuration
type IdempotencyStoreFactory struct {
	redis                 config.RedisConfig
	keyPrefix             string
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption configures the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Defaults to true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithKeyPrefix overrides DefaultKeyPrefix for Redis keys
func WithKeyPrefix(prefix string) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.keyPrefix = prefix
	}
}

// NewIdempotencyStoreFactory creates a factory
func NewIdempotencyStoreFactory(redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redis:                 redisCfg,
		keyPrefix:             DefaultKeyPrefix,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable,
// otherwise an in-memory store if fallback is allowed
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.redis.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, RedisOptions{
		Addr:      f.redis.Addr(),
		Password:  f.redis.Password,
		DB:        f.redis.DB,
		KeyPrefix: f.keyPrefix,
	})
	if err == nil {
		f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redis.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"repeated requests routed to other instances will not be detected",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
