// Package cache defines the content-addressed store a bundle consults
// before reading and decompressing entry data.
package cache

// Cache stores uncompressed entry content keyed by its SHA256 hash.
//
// Callers verify content against the key on every hit, so a corrupted
// cache degrades to a miss. Implementations own their size limits and
// eviction, and must be safe for concurrent use.
type Cache interface {
	// Get returns the cached content for hash.
	Get(hash []byte) ([]byte, bool)

	// Put stores content under hash. Storing an existing key is a no-op.
	Put(hash []byte, content []byte) error

	// Delete removes content for hash; missing entries are not an error.
	Delete(hash []byte) error

	// MaxBytes returns the configured size limit (0 = unlimited).
	MaxBytes() int64

	// SizeBytes returns the current size in bytes.
	SizeBytes() int64

	// Prune evicts entries until the cache is at or below targetBytes and
	// returns the number of bytes freed.
	Prune(targetBytes int64) (int64, error)
}
