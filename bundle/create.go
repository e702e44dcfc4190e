package bundle

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/uasset/internal/fb"
)

// DefaultMaxFiles is the file limit used when CreateWithMaxFiles is unset.
const DefaultMaxFiles = 200_000

// SkipCompressionFunc reports whether a file should be stored uncompressed.
type SkipCompressionFunc func(path string, info fs.FileInfo) bool

// DefaultSkipCompression skips files smaller than minSize and media that is
// already compressed.
func DefaultSkipCompression(minSize int64) SkipCompressionFunc {
	return func(path string, info fs.FileInfo) bool {
		if info != nil && minSize > 0 && info.Size() < minSize {
			return true
		}
		_, ok := precompressedExts[strings.ToLower(filepath.Ext(path))]
		return ok
	}
}

var precompressedExts = map[string]struct{}{
	".bk2":  {},
	".bik":  {},
	".mp4":  {},
	".ogg":  {},
	".png":  {},
	".wem":  {},
	".webm": {},
	".zst":  {},
}

type createConfig struct {
	compression     Compression
	skipCompression []SkipCompressionFunc
	maxFiles        int
	logger          *slog.Logger
}

// CreateOption configures Create.
type CreateOption func(*createConfig)

// CreateWithCompression sets how entry data is stored.
func CreateWithCompression(c Compression) CreateOption {
	return func(cfg *createConfig) {
		cfg.compression = c
	}
}

// CreateWithSkipCompression adds predicates that store a file
// uncompressed when any of them returns true.
func CreateWithSkipCompression(fns ...SkipCompressionFunc) CreateOption {
	return func(cfg *createConfig) {
		cfg.skipCompression = append(cfg.skipCompression, fns...)
	}
}

// CreateWithMaxFiles limits the number of files in the bundle.
// Zero uses DefaultMaxFiles. Negative means no limit.
func CreateWithMaxFiles(n int) CreateOption {
	return func(cfg *createConfig) {
		cfg.maxFiles = n
	}
}

// CreateWithLogger sets the logger used while creating a bundle.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(cfg *createConfig) {
		cfg.logger = logger
	}
}

// Create writes every regular file under dir into a bundle: file contents
// go to dataW in path order and the FlatBuffers index goes to indexW.
// Symbolic links are skipped and empty directories are not recorded.
func Create(ctx context.Context, dir string, indexW, dataW io.Writer, opts ...CreateOption) error {
	cfg := createConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxFiles == 0 {
		cfg.maxFiles = DefaultMaxFiles
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return err
	}
	defer root.Close()

	w := &writer{cfg: cfg, root: root, buf: make([]byte, 32*1024)}
	w.log().Info("creating bundle", "dir", dir, "compression", cfg.compression.String())

	paths, err := w.collect(ctx)
	if err != nil {
		return err
	}

	if cfg.compression == CompressionZstd {
		w.enc, err = zstd.NewWriter(io.Discard, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
	}

	hasher := sha256.New()
	data := io.MultiWriter(dataW, hasher)
	entries := make([]Entry, 0, len(paths))
	var total uint64
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := w.writeEntry(data, path)
		if err != nil {
			return err
		}
		if entry.DataSize > ^uint64(0)-total {
			return ErrSizeOverflow
		}
		entry.DataOffset = total
		total += entry.DataSize
		entries = append(entries, entry)
	}

	w.log().Debug("bundle data written", "file_count", len(entries), "data_size", total)

	_, err = indexW.Write(buildIndex(entries, total, hasher.Sum(nil)))
	return err
}

type writer struct {
	cfg  createConfig
	root *os.Root
	enc  *zstd.Encoder
	buf  []byte
}

func (w *writer) log() *slog.Logger {
	if w.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.cfg.logger
}

// collect returns the slash-separated paths of every regular file, sorted
// bytewise so that the index can be binary searched.
func (w *writer) collect(ctx context.Context) ([]string, error) {
	var paths []string
	err := fs.WalkDir(w.root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return nil
		case d.Type()&fs.ModeSymlink != 0:
			w.log().Debug("skipped symlink", "path", path)
			return nil
		case !d.Type().IsRegular():
			w.log().Debug("skipped irregular file", "path", path, "mode", d.Type().String())
			return nil
		}
		if w.cfg.maxFiles > 0 && len(paths) >= w.cfg.maxFiles {
			return ErrTooManyFiles
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// writeEntry streams one file through the hasher and optional compressor.
func (w *writer) writeEntry(data io.Writer, path string) (Entry, error) {
	f, err := w.root.Open(filepath.FromSlash(path))
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Entry{}, err
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("not a regular file: %s", path)
	}

	compression := w.cfg.compression
	if compression != CompressionNone && w.skipCompression(path, info) {
		compression = CompressionNone
	}

	hasher := sha256.New()
	cw := &countingWriter{w: data}
	cr := &countingReader{r: io.LimitReader(f, info.Size())}
	src := io.TeeReader(cr, hasher)

	if compression == CompressionNone {
		if _, err := io.CopyBuffer(cw, src, w.buf); err != nil {
			return Entry{}, fmt.Errorf("write %s: %w", path, err)
		}
	} else {
		w.enc.Reset(cw)
		if _, err := io.CopyBuffer(w.enc, src, w.buf); err != nil {
			w.enc.Close()
			return Entry{}, fmt.Errorf("write %s: %w", path, err)
		}
		if err := w.enc.Close(); err != nil {
			return Entry{}, fmt.Errorf("write %s: close zstd encoder: %w", path, err)
		}
	}

	if cr.n != uint64(info.Size()) { //nolint:gosec // size of a regular file is non-negative
		return Entry{}, fmt.Errorf("file size changed during bundle creation: %s: expected %d, got %d", path, info.Size(), cr.n)
	}

	return Entry{
		Path:         path,
		DataSize:     cw.n,
		OriginalSize: cr.n,
		Hash:         hasher.Sum(nil),
		Compression:  compression,
	}, nil
}

func (w *writer) skipCompression(path string, info fs.FileInfo) bool {
	for _, fn := range w.cfg.skipCompression {
		if fn != nil && fn(path, info) {
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n) //nolint:gosec // n is non-negative per io.Reader
	return n, err
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n) //nolint:gosec // n is non-negative per io.Writer
	return n, err
}

// buildIndex serializes entries, which must already be sorted by path.
func buildIndex(entries []Entry, dataSize uint64, dataHash []byte) []byte {
	builder := flatbuffers.NewBuilder(1024)

	// FlatBuffers builds back to front.
	entryOffsets := make([]flatbuffers.UOffsetT, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]

		pathOffset := builder.CreateString(e.Path)
		hashOffset := builder.CreateByteVector(e.Hash)

		fb.EntryStart(builder)
		fb.EntryAddPath(builder, pathOffset)
		fb.EntryAddDataOffset(builder, e.DataOffset)
		fb.EntryAddDataSize(builder, e.DataSize)
		fb.EntryAddOriginalSize(builder, e.OriginalSize)
		fb.EntryAddHash(builder, hashOffset)
		fb.EntryAddCompression(builder, fb.Compression(e.Compression))
		entryOffsets[i] = fb.EntryEnd(builder)
	}

	fb.IndexStartEntriesVector(builder, len(entries))
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(entries))

	var dataHashOffset flatbuffers.UOffsetT
	if len(dataHash) > 0 {
		dataHashOffset = builder.CreateByteVector(dataHash)
	}

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, indexVersion)
	fb.IndexAddHashAlgorithm(builder, fb.HashAlgorithmSHA256)
	fb.IndexAddEntries(builder, entriesOffset)
	fb.IndexAddDataSize(builder, dataSize)
	if dataHashOffset != 0 {
		fb.IndexAddDataHash(builder, dataHashOffset)
	}
	builder.Finish(fb.IndexEnd(builder))
	return builder.FinishedBytes()
}
