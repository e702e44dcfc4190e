//go:generate flatc --go --go-namespace fb -o ../internal/fb ../internal/fb/index.fbs

// Package bundle packs a directory of cooked package files into a two-part
// archive and serves them back as a uasset.Container.
//
// A bundle consists of two blobs:
//   - Index: FlatBuffers-encoded entry metadata, sorted by path, giving
//     O(log n) lookups and contiguous prefix scans
//   - Data: the concatenated entry contents in path order, each optionally
//     zstd-compressed
//
// Every entry carries the SHA256 of its uncompressed content, which
// ReadFile verifies and which doubles as the entry's digest when a bundle
// is handed to uasset.DecodeFromContainer. DecodeAll decodes every package
// under a path prefix in parallel.
package bundle
