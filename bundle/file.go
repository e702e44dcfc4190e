package bundle

import (
	"fmt"
	"os"
)

// Default file names for the two halves of a bundle on disk.
const (
	DefaultIndexName = "index.bundle"
	DefaultDataName  = "data.bundle"
)

// fileSource adapts an *os.File to ByteSource with the size captured at
// open time.
type fileSource struct {
	file *os.File
	size int64
}

func newFileSource(f *os.File) (*fileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}
	return &fileSource{file: f, size: info.Size()}, nil
}

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

func (s *fileSource) Size() int64 {
	return s.size
}

// File is a Bundle backed by an open data file. Close must be called to
// release it.
type File struct {
	*Bundle
	dataFile *os.File
}

// Close closes the underlying data file.
func (f *File) Close() error {
	if f.dataFile == nil {
		return nil
	}
	err := f.dataFile.Close()
	f.dataFile = nil
	return err
}

// OpenFile reads the index at indexPath into memory and opens dataPath for
// random access.
func OpenFile(indexPath, dataPath string, opts ...Option) (*File, error) {
	indexData, err := os.ReadFile(indexPath) //nolint:gosec // caller-chosen path
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}

	dataFile, err := os.Open(dataPath) //nolint:gosec // caller-chosen path
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}

	source, err := newFileSource(dataFile)
	if err != nil {
		dataFile.Close()
		return nil, err
	}

	b, err := New(indexData, source, opts...)
	if err != nil {
		dataFile.Close()
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	return &File{Bundle: b, dataFile: dataFile}, nil
}
