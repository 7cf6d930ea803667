package modelbuilder

import (
	"context"
	"strings"
)

// Cache is the interface for caching assembled metadata snapshots
// between runs. Implementations store opaque encoded payloads.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}

// CacheKey identifies one metadata snapshot. Two runs share a snapshot
// only when they read the same source with the same filters.
type CacheKey struct {
	Source   string
	Entities string
	Messages string
	Global   bool
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	global := "local"
	if k.Global {
		global = "global"
	}
	return strings.Join([]string{k.Source, k.Entities, k.Messages, global}, ":")
}
