package testutil

import (
	"errors"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/uasset"
)

// MockByteSource implements a simple in-memory byte source for tests.
type MockByteSource struct {
	data []byte
}

// NewMockByteSource returns a byte source backed by the provided data.
func NewMockByteSource(data []byte) *MockByteSource {
	return &MockByteSource{data: data}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *MockByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if off+int64(n) >= int64(len(m.data)) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MockByteSource) Size() int64 {
	return int64(len(m.data))
}

// Bytes returns the backing slice for tests that need to mutate data.
func (m *MockByteSource) Bytes() []byte {
	return m.data
}

// MockContainer is a concurrency-safe in-memory uasset.Container.
type MockContainer struct {
	mu    sync.RWMutex
	files map[string][]byte
	sums  map[string]digest.Digest
	reads int
}

var _ uasset.Container = (*MockContainer)(nil)

// NewMockContainer returns an empty container.
func NewMockContainer() *MockContainer {
	return &MockContainer{files: make(map[string][]byte), sums: make(map[string]digest.Digest)}
}

// Put stores data under name along with its canonical digest.
func (c *MockContainer) Put(name string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[name] = data
	c.sums[name] = digest.FromBytes(data)
}

// Corrupt replaces the bytes stored under name without updating the
// recorded digest.
func (c *MockContainer) Corrupt(name string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[name] = data
}

// Reads returns the number of ReadEntry calls.
func (c *MockContainer) Reads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reads
}

// Lookup implements uasset.Container.
func (c *MockContainer) Lookup(name string) (uasset.ContainerEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.files[name]
	if !ok {
		return uasset.ContainerEntry{}, false
	}
	return uasset.ContainerEntry{Name: name, Size: int64(len(data)), Digest: c.sums[name]}, true
}

// ReadEntry implements uasset.Container.
func (c *MockContainer) ReadEntry(entry uasset.ContainerEntry) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	data, ok := c.files[entry.Name]
	if !ok {
		return nil, errors.New("testutil: no such entry")
	}
	return append([]byte(nil), data...), nil
}
