package testutil

import (
	"crypto/sha256"
	"slices"
	"strings"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/uasset/internal/fb"
)

// TestEntry holds data for building bundle index entries by hand.
type TestEntry struct {
	Path         string
	DataOffset   uint64
	DataSize     uint64
	OriginalSize uint64
	Hash         []byte
	Compression  fb.Compression
}

// RawEntry returns an uncompressed entry for content stored at offset.
func RawEntry(path string, offset uint64, content []byte) TestEntry {
	sum := sha256.Sum256(content)
	return TestEntry{
		Path:         path,
		DataOffset:   offset,
		DataSize:     uint64(len(content)),
		OriginalSize: uint64(len(content)),
		Hash:         sum[:],
	}
}

// IndexOptions controls the shape of a hand-built index.
type IndexOptions struct {
	Version uint32
	// KeepOrder writes entries as given instead of sorting them by path.
	KeepOrder bool
}

// BuildTestIndex creates a version 1 index from entries, sorted by path.
func BuildTestIndex(tb testing.TB, entries []TestEntry) []byte {
	tb.Helper()
	return BuildTestIndexWith(tb, IndexOptions{Version: 1}, entries)
}

// BuildTestIndexWith creates an index from entries under opts.
func BuildTestIndexWith(tb testing.TB, opts IndexOptions, entries []TestEntry) []byte {
	tb.Helper()

	entries = slices.Clone(entries)
	if !opts.KeepOrder {
		slices.SortFunc(entries, func(a, b TestEntry) int {
			return strings.Compare(a.Path, b.Path)
		})
	}

	builder := flatbuffers.NewBuilder(1024)

	entryOffsets := make([]flatbuffers.UOffsetT, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]

		pathOffset := builder.CreateString(e.Path)

		fb.EntryStartHashVector(builder, len(e.Hash))
		for j := len(e.Hash) - 1; j >= 0; j-- {
			builder.PrependByte(e.Hash[j])
		}
		hashOffset := builder.EndVector(len(e.Hash))

		fb.EntryStart(builder)
		fb.EntryAddPath(builder, pathOffset)
		fb.EntryAddDataOffset(builder, e.DataOffset)
		fb.EntryAddDataSize(builder, e.DataSize)
		fb.EntryAddOriginalSize(builder, e.OriginalSize)
		fb.EntryAddHash(builder, hashOffset)
		fb.EntryAddCompression(builder, e.Compression)
		entryOffsets[i] = fb.EntryEnd(builder)
	}

	fb.IndexStartEntriesVector(builder, len(entries))
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(entries))

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, opts.Version)
	fb.IndexAddHashAlgorithm(builder, fb.HashAlgorithmSHA256)
	fb.IndexAddEntries(builder, entriesOffset)
	builder.Finish(fb.IndexEnd(builder))
	return builder.FinishedBytes()
}
