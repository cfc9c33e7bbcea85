// Package cache provides byte-level caching for decoded documents and rendered
// artifacts.
//
// # Backends
//
//   - [FileCache]: hash-sharded JSON entry files, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the API server
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// # Keys
//
// Keys are derived by a [Keyer] from content hashes so that identical
// documents and render options share entries. [ScopedKeyer] adds a prefix for
// separate namespaces on a shared backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind.
const (
	// TTLTree applies to normalized documents keyed by document hash. The
	// tree is rebuilt from the document on a hit.
	TTLTree = 24 * time.Hour

	// TTLArtifact applies to rendered SVG and PNG output.
	TTLArtifact = 7 * 24 * time.Hour
)

// Key types reported to cache hooks.
const (
	KeyTypeTree     = "tree"
	KeyTypeArtifact = "artifact"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with (nil, false, nil); an error means the backend
// failed, not that the key was absent. A zero ttl stores without expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
