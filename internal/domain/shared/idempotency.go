package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys that have already been accepted
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl.
	// Returns true if the key was newly claimed, false if it was already taken.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release frees a claimed key so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a claimed key blocks repeats
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
