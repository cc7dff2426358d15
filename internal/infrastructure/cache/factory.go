package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/roofpo/backend/internal/domain/shared"
	"github.com/roofpo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend hands out the Redis backed stores, or their in-memory
// counterparts when Redis is disabled or unreachable
type Backend struct {
	client                *redis.Client
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BackendOption is a functional option for configuring the backend
type BackendOption func(*Backend)

// WithLogger sets the logger for the backend
func WithLogger(logger *zap.Logger) BackendOption {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores. Default is true.
func WithInMemoryFallback(allow bool) BackendOption {
	return func(b *Backend) {
		b.allowInMemoryFallback = allow
	}
}

// NewBackend connects to Redis when it is enabled
func NewBackend(cfg config.RedisConfig, opts ...BackendOption) (*Backend, error) {
	b := &Backend{
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(b)
	}

	if !cfg.Enabled {
		b.logger.Info("Redis disabled, using in-memory stores")
		return b, nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		if !b.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		b.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Tokens, caches and idempotency keys will not be shared between instances.",
			zap.Error(err),
		)
		return b, nil
	}

	b.logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()))
	b.client = client
	return b, nil
}

// Client returns the Redis client, nil when running in-memory
func (b *Backend) Client() *redis.Client {
	return b.client
}

// UsesRedis reports whether the stores are Redis backed
func (b *Backend) UsesRedis() bool {
	return b.client != nil
}

// IdempotencyStore returns the store for Idempotency-Key deduplication
func (b *Backend) IdempotencyStore() shared.IdempotencyStore {
	if b.client != nil {
		return NewRedisIdempotencyStore(b.client, DefaultIdempotencyPrefix)
	}
	return NewInMemoryIdempotencyStore()
}

// JSONCache returns a cache under the given key prefix
func (b *Backend) JSONCache(prefix string) JSONCache {
	if b.client != nil {
		return NewRedisJSONCache(b.client, prefix, b.logger)
	}
	return NewInMemoryJSONCache()
}

// Close closes the Redis client
func (b *Backend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}
