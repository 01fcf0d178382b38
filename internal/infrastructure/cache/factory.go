package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/omnistock/backend/internal/domain/shared"
	"github.com/omnistock/backend/internal/infrastructure/config"
)

// NewIdempotencyStore creates an idempotency store from configuration.
// Backend "redis" requires a reachable Redis instance; backend "memory"
// is for single-instance deployments and tests.
func NewIdempotencyStore(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cacheCfg.Backend {
	case "redis":
		store, err := NewRedisIdempotencyStore(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
		}
		logger.Info("Using Redis idempotency store",
			zap.String("host", redisCfg.Host),
			zap.Int("port", redisCfg.Port),
		)
		return store, nil
	case "memory":
		logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cacheCfg.Backend)
	}
}
