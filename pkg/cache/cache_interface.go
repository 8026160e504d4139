package cache

import (
	"context"
	"time"
)

// Cache is the contract of the key/value cache layer.
// Values are JSON-encoded by the implementation.
type Cache interface {
	// Get loads the value stored under key into dest.
	// found=false on a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern such as "page:*"
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}
