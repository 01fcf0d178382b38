package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/infrastructure/config"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	t.Run("first mark wins", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		ok, err := store.MarkProcessed(context.Background(), "MERCADOLIBRE:9001", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.MarkProcessed(context.Background(), "MERCADOLIBRE:9001", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		processed, err := store.IsProcessed(context.Background(), "MERCADOLIBRE:9001")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired entries are not processed", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(context.Background(), "RIPLEY:R-1", time.Nanosecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		processed, err := store.IsProcessed(context.Background(), "RIPLEY:R-1")
		require.NoError(t, err)
		assert.False(t, processed)

		// And the key can be claimed again.
		ok, err := store.MarkProcessed(context.Background(), "RIPLEY:R-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}

func TestNewIdempotencyStoreFactory(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		store, err := NewIdempotencyStore(config.CacheConfig{Backend: "memory"}, config.RedisConfig{}, zap.NewNop())
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("unknown backend fails", func(t *testing.T) {
		_, err := NewIdempotencyStore(config.CacheConfig{Backend: "memcached"}, config.RedisConfig{}, zap.NewNop())
		assert.Error(t, err)
	})
}
