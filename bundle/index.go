package bundle

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"iter"
	"sort"

	"github.com/meigma/uasset/internal/fb"
)

const indexVersion = 1

// index is a read-only view over FlatBuffers index bytes. Entry hashes
// returned from it alias those bytes.
type index struct {
	data []byte
	root *fb.Index
}

// loadIndex parses and validates index bytes. Every entry is visited once
// so that a malformed buffer fails here rather than on a later lookup.
func loadIndex(data []byte) (idx *index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("%w: %v", ErrInvalidIndex, r)
		}
	}()
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidIndex, len(data))
	}

	root := fb.GetRootAsIndex(data, 0)
	if v := root.Version(); v != indexVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidIndex, v)
	}
	if alg := root.HashAlgorithm(); alg != fb.HashAlgorithmSHA256 {
		return nil, fmt.Errorf("%w: unsupported hash algorithm %s", ErrInvalidIndex, alg)
	}

	var e fb.Entry
	var prev []byte
	for i := range root.EntriesLength() {
		root.Entries(&e, i)
		path := e.Path()
		if i > 0 && bytes.Compare(prev, path) >= 0 {
			return nil, fmt.Errorf("%w: entries not sorted at %q", ErrInvalidIndex, path)
		}
		if e.HashLength() != sha256.Size {
			return nil, fmt.Errorf("%w: %s: hash length %d", ErrInvalidIndex, path, e.HashLength())
		}
		prev = path
	}
	return &index{data: data, root: root}, nil
}

func (idx *index) lookup(path string) (Entry, bool) {
	var e fb.Entry
	if !idx.root.EntriesByKey(&e, path) {
		return Entry{}, false
	}
	return entryFromFlatBuffers(&e), true
}

func (idx *index) len() int {
	return idx.root.EntriesLength()
}

func (idx *index) dataHash() ([]byte, bool) {
	hash := idx.root.DataHashBytes()
	if len(hash) == 0 {
		return nil, false
	}
	return hash, true
}

func (idx *index) dataSize() (uint64, bool) {
	if _, ok := idx.dataHash(); !ok {
		return 0, false
	}
	return idx.root.DataSize(), true
}

func (idx *index) entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		var e fb.Entry
		for i := range idx.root.EntriesLength() {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !yield(entryFromFlatBuffers(&e)) {
				return
			}
		}
	}
}

// entriesWithPrefix binary searches for the first path >= prefix and scans
// forward while paths keep the prefix.
func (idx *index) entriesWithPrefix(prefix string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		n := idx.root.EntriesLength()
		if n == 0 {
			return
		}
		prefixBytes := []byte(prefix)

		start := sort.Search(n, func(i int) bool {
			var e fb.Entry
			if !idx.root.Entries(&e, i) {
				return false
			}
			return bytes.Compare(e.Path(), prefixBytes) >= 0
		})

		var e fb.Entry
		for i := start; i < n; i++ {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !bytes.HasPrefix(e.Path(), prefixBytes) {
				return
			}
			if !yield(entryFromFlatBuffers(&e)) {
				return
			}
		}
	}
}
