// Package compilecache caches compiled artifacts (submission binaries,
// the default checker, conver's model-solution builds) under a
// caller-chosen key, so the same key is never compiled twice within an
// entry's TTL. The judge worker keys model solutions and package
// checkers by a hash of their source, submissions by a hash of
// submission id and language, and the default checker by its build
// timestamp.
package compilecache

import (
	"context"
	"time"
)

// CompileFunc produces the artifact for a cache miss. It returns the
// host path to the compiled output. The disk cache copies that file into
// its own storage; the memory cache stores and returns the path as is.
type CompileFunc func(ctx context.Context) (artifactPath string, err error)

// Cache resolves a key to a cached artifact path, compiling on miss.
type Cache interface {
	// GetOrInsert returns the cached path for key if present and not
	// expired, otherwise calls compile, stores its result under key with
	// the given ttl, and returns the stored path.
	GetOrInsert(ctx context.Context, key string, ttl time.Duration, compile CompileFunc) (string, error)

	// Stats reports cache occupancy for observability/CLI reporting.
	Stats() Stats
}

// Stats summarizes cache occupancy.
type Stats struct {
	Entries   int
	Hits      int64
	Misses    int64
	SizeBytes int64
}
