package cache

import (
	"context"
	"time"
)

// Cache stores serialized values by key
type Cache interface {
	// Get returns the value and true if found
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl; a zero ttl uses the backend default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Close releases any underlying connections
	Close() error
}
