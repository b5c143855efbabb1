package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := startRedis(t)
	store := NewRedisIdempotencyStoreWithClient(client, "test:idem:")
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	t.Run("claims once and stores under prefix with ttl", func(t *testing.T) {
		ok, err := store.MarkProcessed(ctx, "sale-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.MarkProcessed(ctx, "sale-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		ttl, err := client.TTL(ctx, "test:idem:sale-1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("is processed and release", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "sale-2", time.Minute)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "sale-2")
		require.NoError(t, err)
		assert.True(t, processed)

		require.NoError(t, store.Release(ctx, "sale-2"))
		processed, err = store.IsProcessed(ctx, "sale-2")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestNewRedisIdempotencyStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	store, err := NewRedisIdempotencyStore(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewRedisIdempotencyStoreWithClient_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	store := NewRedisIdempotencyStoreWithClient(client, "")
	defer store.Close()

	assert.Equal(t, DefaultKeyPrefix+"abc", store.key("abc"))
}
