package bundle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/uasset/internal/sizing"
)

const (
	// DefaultMaxFileSize is the default maximum entry size (256MB).
	DefaultMaxFileSize = 256 << 20

	// DefaultMaxDecoderMemory is the default maximum decoder memory (256MB).
	DefaultMaxDecoderMemory = 256 << 20
)

// decompressPool manages reusable zstd decoders.
type decompressPool struct {
	pool               sync.Pool
	maxDecoderMemory   uint64
	decoderConcurrency int
	decoderLowmem      bool
}

func newDecompressPool(maxMemory uint64, concurrency int, lowmem bool) *decompressPool {
	p := &decompressPool{
		maxDecoderMemory:   maxMemory,
		decoderConcurrency: max(concurrency, 0),
		decoderLowmem:      lowmem,
	}
	p.pool.New = func() any {
		dec, err := p.newDecoder(nil)
		if err != nil {
			return nil
		}
		return dec
	}
	return p
}

// get returns a decoder reading from r. The release func must be called
// when the caller is done; it is not needed when an error is returned.
func (p *decompressPool) get(r io.Reader) (*zstd.Decoder, func(), error) {
	dec, ok := p.pool.Get().(*zstd.Decoder)
	if !ok {
		fresh, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return fresh, fresh.Close, nil
	}
	if err := dec.Reset(r); err != nil {
		dec.Close()
		fresh, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return fresh, fresh.Close, nil
	}
	return dec, func() {
		_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
		p.pool.Put(dec)
	}, nil
}

func (p *decompressPool) newDecoder(r io.Reader) (*zstd.Decoder, error) {
	opts := []zstd.DOption{
		zstd.WithDecoderConcurrency(p.decoderConcurrency),
		zstd.WithDecoderLowmem(p.decoderLowmem),
	}
	if p.maxDecoderMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(p.maxDecoderMemory))
	}
	return zstd.NewReader(r, opts...)
}

// reader reads and verifies entry content from a ByteSource.
type reader struct {
	source      ByteSource
	maxFileSize uint64
	pool        *decompressPool
}

func (r *reader) validate(entry *Entry) error {
	size := r.source.Size()
	if size < 0 {
		return ErrSizeOverflow
	}
	if r.maxFileSize > 0 && (entry.DataSize > r.maxFileSize || entry.OriginalSize > r.maxFileSize) {
		return ErrSizeOverflow
	}
	end, ok := sizing.AddUint64(entry.DataOffset, entry.DataSize)
	if !ok || end > uint64(size) {
		return ErrSizeOverflow
	}
	if len(entry.Hash) != sha256.Size {
		return fmt.Errorf("invalid hash length: %d", len(entry.Hash))
	}
	if entry.Compression == CompressionNone && entry.DataSize != entry.OriginalSize {
		return fmt.Errorf("%w: size mismatch", ErrDecompression)
	}
	return nil
}

// readAll reads an entry, decompressing when needed, and verifies its hash.
func (r *reader) readAll(entry *Entry) ([]byte, error) {
	if err := r.validate(entry); err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	offset, err := sizing.ToInt64(entry.DataOffset, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	length, err := sizing.ToInt64(entry.DataSize, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	contentSize, err := sizing.ToInt(entry.OriginalSize, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	section := io.NewSectionReader(r.source, offset, length)

	var src io.Reader = section
	switch entry.Compression {
	case CompressionNone:
	case CompressionZstd:
		dec, release, err := r.pool.get(section)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		defer release()
		src = dec
	default:
		return nil, fmt.Errorf("read %s: unknown compression %s", entry.Path, entry.Compression)
	}

	content := make([]byte, contentSize)
	n, err := io.ReadFull(src, content)
	if err != nil {
		return nil, mapReadError(entry, n, contentSize, err)
	}
	if entry.Compression == CompressionZstd {
		var extra [1]byte
		if m, err := src.Read(extra[:]); m > 0 || (err != nil && !errors.Is(err, io.EOF)) {
			return nil, fmt.Errorf("%w: %s: content exceeds recorded size", ErrDecompression, entry.Path)
		}
	}

	sum := sha256.Sum256(content)
	if !bytes.Equal(sum[:], entry.Hash) {
		return nil, fmt.Errorf("%w: %s", ErrHashMismatch, entry.Path)
	}
	return content, nil
}

func mapReadError(entry *Entry, n, expected int, err error) error {
	short := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
	if entry.Compression == CompressionNone {
		if short {
			return fmt.Errorf("read %s: short read (%d of %d bytes)", entry.Path, n, expected)
		}
		return fmt.Errorf("read %s: %w", entry.Path, err)
	}
	if short {
		return fmt.Errorf("%w: %s: unexpected EOF", ErrDecompression, entry.Path)
	}
	return fmt.Errorf("%w: %s: %v", ErrDecompression, entry.Path, err)
}
