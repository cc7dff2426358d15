package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already processed
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked, false if it was seen within its TTL
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget releases a key so the operation can be retried
	Forget(ctx context.Context, key string) error

	Close() error
}
