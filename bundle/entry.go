package bundle

import (
	"errors"
	"strconv"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/uasset/internal/fb"
)

// Compression identifies how an entry's bytes are stored in the data blob.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return "Compression(" + strconv.Itoa(int(c)) + ")"
	}
}

var (
	// ErrHashMismatch is returned when entry content does not match its hash.
	ErrHashMismatch = errors.New("bundle: hash mismatch")

	// ErrDecompression is returned when an entry fails to decompress.
	ErrDecompression = errors.New("bundle: decompression failed")

	// ErrSizeOverflow is returned when an entry's sizes exceed the data
	// blob or the configured limits.
	ErrSizeOverflow = errors.New("bundle: size overflow")

	// ErrTooManyFiles is returned when Create exceeds its file limit.
	ErrTooManyFiles = errors.New("bundle: too many files")

	// ErrInvalidIndex is returned when index bytes cannot be parsed.
	ErrInvalidIndex = errors.New("bundle: invalid index")
)

// Entry describes one file stored in a bundle.
type Entry struct {
	Path         string
	DataOffset   uint64
	DataSize     uint64
	OriginalSize uint64
	// Hash is the SHA256 of the uncompressed content.
	Hash        []byte
	Compression Compression
}

// Digest returns the entry's content digest.
func (e *Entry) Digest() digest.Digest {
	return digest.NewDigestFromBytes(digest.SHA256, e.Hash)
}

func entryFromFlatBuffers(e *fb.Entry) Entry {
	return Entry{
		Path:         string(e.Path()),
		DataOffset:   e.DataOffset(),
		DataSize:     e.DataSize(),
		OriginalSize: e.OriginalSize(),
		Hash:         e.HashBytes(),
		Compression:  Compression(e.Compression()),
	}
}
