package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultScanBatchSize = 100

// JSONCache stores JSON encoded values under string keys
type JSONCache interface {
	// Get decodes the cached value into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisJSONCache implements JSONCache on Redis
type RedisJSONCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisJSONCache creates a cache on a shared client. The caller keeps ownership
// of the client.
func NewRedisJSONCache(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisJSONCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisJSONCache{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Get reads a cached value
func (c *RedisJSONCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	cacheKey := c.keyPrefix + key
	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("Dropping corrupted cache entry", zap.String("key", cacheKey), zap.Error(err))
		_ = c.client.Del(ctx, cacheKey)
		return false, nil
	}
	return true, nil
}

// Set writes a value with a TTL
func (c *RedisJSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// DeletePrefix removes matching keys with SCAN so large keyspaces are not blocked
func (c *RedisJSONCache) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := c.keyPrefix + prefix + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, defaultScanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// InMemoryJSONCache implements JSONCache in process memory
type InMemoryJSONCache struct {
	mu      sync.RWMutex
	entries map[string]jsonEntry
}

type jsonEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewInMemoryJSONCache creates an empty in-memory cache
func NewInMemoryJSONCache() *InMemoryJSONCache {
	return &InMemoryJSONCache{entries: make(map[string]jsonEntry)}
}

// Get reads a cached value. An expired entry is dropped on the miss.
func (c *InMemoryJSONCache) Get(_ context.Context, key string, dest any) (bool, error) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if now.After(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && now.After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache value: %w", err)
	}
	return true, nil
}

// Set writes a value with a TTL and sweeps out expired entries
func (c *InMemoryJSONCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = jsonEntry{data: data, expiresAt: now.Add(ttl)}
	return nil
}

// DeletePrefix removes matching keys
func (c *InMemoryJSONCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

var (
	_ JSONCache = (*RedisJSONCache)(nil)
	_ JSONCache = (*InMemoryJSONCache)(nil)
)
