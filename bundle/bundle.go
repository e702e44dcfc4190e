package bundle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/uasset"
	"github.com/meigma/uasset/bundle/cache"
	"github.com/meigma/uasset/internal/sizing"
)

var _ uasset.Container = (*Bundle)(nil)

// ByteSource provides random access to the data blob.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// Bundle provides verified random access to the files of a bundle.
// It is safe for concurrent use.
type Bundle struct {
	idx                *index
	indexData          []byte
	reader             *reader
	maxFileSize        uint64
	maxDecoderMemory   uint64
	decoderConcurrency int
	decoderLowmem      bool
	decodeConcurrency  int
	cache              cache.Cache        // nil = no caching
	readGroup          singleflight.Group // zero value is valid
	logger             *slog.Logger
}

func (b *Bundle) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// New creates a Bundle from FlatBuffers index bytes and the matching data
// blob. The index bytes are retained and must not be modified.
func New(indexData []byte, source ByteSource, opts ...Option) (*Bundle, error) {
	idx, err := loadIndex(indexData)
	if err != nil {
		return nil, err
	}
	b := &Bundle{
		idx:                idx,
		indexData:          indexData,
		maxFileSize:        DefaultMaxFileSize,
		maxDecoderMemory:   DefaultMaxDecoderMemory,
		decoderConcurrency: 1,
		decodeConcurrency:  DefaultDecodeConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.reader = &reader{
		source:      source,
		maxFileSize: b.maxFileSize,
		pool:        newDecompressPool(b.maxDecoderMemory, b.decoderConcurrency, b.decoderLowmem),
	}
	return b, nil
}

// Entry returns the entry stored at path.
func (b *Bundle) Entry(path string) (Entry, bool) {
	return b.idx.lookup(path)
}

// Entries iterates over every entry in path order.
func (b *Bundle) Entries() iter.Seq[Entry] {
	return b.idx.entries()
}

// EntriesWithPrefix iterates, in path order, over entries whose path
// starts with prefix.
func (b *Bundle) EntriesWithPrefix(prefix string) iter.Seq[Entry] {
	return b.idx.entriesWithPrefix(prefix)
}

// Len returns the number of entries.
func (b *Bundle) Len() int {
	return b.idx.len()
}

// IndexData returns the raw index bytes.
func (b *Bundle) IndexData() []byte {
	return b.indexData
}

// DataHash returns the SHA256 of the whole data blob recorded in the index.
func (b *Bundle) DataHash() ([]byte, bool) {
	return b.idx.dataHash()
}

// DataSize returns the data blob size recorded in the index.
func (b *Bundle) DataSize() (uint64, bool) {
	return b.idx.dataSize()
}

// VerifyData streams the whole data blob and checks it against the size
// and hash recorded in the index.
func (b *Bundle) VerifyData() error {
	want, ok := b.idx.dataHash()
	if !ok {
		return errors.New("verify data: index records no data hash")
	}
	size, _ := b.idx.dataSize()
	if uint64(max(b.reader.source.Size(), 0)) != size {
		return fmt.Errorf("verify data: %w: source has %d bytes, index records %d", ErrSizeOverflow, b.reader.source.Size(), size)
	}
	h := sha256.New()
	if _, err := io.Copy(h, io.NewSectionReader(b.reader.source, 0, b.reader.source.Size())); err != nil {
		return fmt.Errorf("verify data: %w", err)
	}
	if !bytes.Equal(h.Sum(nil), want) {
		return fmt.Errorf("verify data: %w", ErrHashMismatch)
	}
	return nil
}

// ReadFile returns the verified, uncompressed content of the named entry.
// Concurrent reads of identical content share a single read.
func (b *Bundle) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	entry, ok := b.idx.lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	return b.read(&entry)
}

func (b *Bundle) read(entry *Entry) ([]byte, error) {
	if b.cache != nil {
		if content, ok := b.cache.Get(entry.Hash); ok {
			sum := sha256.Sum256(content)
			if bytes.Equal(sum[:], entry.Hash) {
				b.log().Debug("cache hit", "path", entry.Path)
				return content, nil
			}
			b.log().Warn("evicting corrupt cache entry", "path", entry.Path)
			_ = b.cache.Delete(entry.Hash) //nolint:errcheck // best-effort cleanup
		}
	}

	result, err, shared := b.readGroup.Do(string(entry.Hash), func() (any, error) {
		content, err := b.reader.readAll(entry)
		if err != nil {
			return nil, err
		}
		if b.cache != nil {
			if err := b.cache.Put(entry.Hash, content); err != nil {
				b.log().Debug("cache put failed", "path", entry.Path, "error", err)
			}
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	content := result.([]byte) //nolint:errcheck // type assertion always succeeds when err is nil
	if shared {
		content = bytes.Clone(content)
	}
	return content, nil
}

// Lookup implements uasset.Container.
func (b *Bundle) Lookup(name string) (uasset.ContainerEntry, bool) {
	entry, ok := b.idx.lookup(name)
	if !ok {
		return uasset.ContainerEntry{}, false
	}
	offset, err := sizing.ToInt64(entry.DataOffset, ErrSizeOverflow)
	if err != nil {
		return uasset.ContainerEntry{}, false
	}
	size, err := sizing.ToInt64(entry.OriginalSize, ErrSizeOverflow)
	if err != nil {
		return uasset.ContainerEntry{}, false
	}
	return uasset.ContainerEntry{
		Name:   entry.Path,
		Offset: offset,
		Size:   size,
		Digest: entry.Digest(),
	}, true
}

// ReadEntry implements uasset.Container.
func (b *Bundle) ReadEntry(ce uasset.ContainerEntry) ([]byte, error) {
	return b.ReadFile(ce.Name)
}
