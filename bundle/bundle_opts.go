package bundle

import (
	"log/slog"

	"github.com/meigma/uasset/bundle/cache"
)

// DefaultDecodeConcurrency bounds the packages DecodeAll decodes at once.
const DefaultDecodeConcurrency = 8

// Option configures a Bundle.
type Option func(*Bundle)

// WithMaxFileSize limits the stored and uncompressed size of any entry.
// Set to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(b *Bundle) {
		b.maxFileSize = limit
	}
}

// WithMaxDecoderMemory limits the memory a zstd decoder may allocate.
// Set to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(b *Bundle) {
		b.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets the zstd decoder concurrency (default: 1).
// Values < 0 are treated as 0 (use GOMAXPROCS).
func WithDecoderConcurrency(n int) Option {
	return func(b *Bundle) {
		b.decoderConcurrency = max(n, 0)
	}
}

// WithDecoderLowmem sets whether zstd decoders run in low-memory mode.
func WithDecoderLowmem(enabled bool) Option {
	return func(b *Bundle) {
		b.decoderLowmem = enabled
	}
}

// WithDecodeConcurrency sets how many packages DecodeAll decodes at once.
// Values < 1 remove the limit.
func WithDecodeConcurrency(n int) Option {
	return func(b *Bundle) {
		b.decodeConcurrency = n
	}
}

// WithCache enables content-addressed caching of uncompressed entries.
func WithCache(c cache.Cache) Option {
	return func(b *Bundle) {
		b.cache = c
	}
}

// WithLogger sets the logger for bundle operations.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bundle) {
		b.logger = logger
	}
}
