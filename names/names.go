// Package names implements a package's name table: the ordered list of
// strings that every FName in the package indexes into.
//
// Order is significant. Entries are never reordered or removed, so indices
// handed out by Intern stay valid for the life of the table.
package names

import (
	"iter"

	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
)

// None is the name that terminates tagged property lists.
const None = "None"

// Entry is one name table slot. The hashes are kept exactly as read so an
// unmodified table round-trips; interned names get freshly computed hashes.
type Entry struct {
	Value                 types.FString
	NonCasePreservingHash uint16
	CasePreservingHash    uint16
}

// NewEntry returns an entry for s with computed hashes.
func NewEntry(s types.FString) Entry {
	return Entry{
		Value:                 s,
		NonCasePreservingHash: NonCasePreservingHash(s),
		CasePreservingHash:    CasePreservingHash(s),
	}
}

// Map is a package name table.
type Map struct {
	entries []Entry
	lookup  map[string]int32
}

// NewMap returns an empty name table.
func NewMap() *Map {
	return &Map{lookup: make(map[string]int32)}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Append adds e at the end of the table without deduplication and returns
// its index. Decoding uses it to rebuild a table exactly as serialized.
func (m *Map) Append(e Entry) int32 {
	idx := int32(len(m.entries)) //nolint:gosec // table length is bounded by an int32 count
	m.entries = append(m.entries, e)
	if _, dup := m.lookup[e.Value.Value]; !dup {
		m.lookup[e.Value.Value] = idx
	}
	return idx
}

// Intern returns the index of s, appending it when absent. Matching is
// case-sensitive.
func (m *Map) Intern(s string) int32 {
	if idx, ok := m.lookup[s]; ok {
		return idx
	}
	return m.Append(NewEntry(types.NewFString(s)))
}

// Name interns s and returns an FName with no instance number.
func (m *Map) Name(s string) types.FName {
	return types.FName{Index: m.Intern(s)}
}

// Lookup returns the index of s without modifying the table.
func (m *Map) Lookup(s string) (int32, bool) {
	idx, ok := m.lookup[s]
	return idx, ok
}

// Contains reports whether index addresses an entry.
func (m *Map) Contains(index int32) bool {
	return index >= 0 && int(index) < len(m.entries)
}

// Value returns the raw string at index.
func (m *Map) Value(index int32) (string, bool) {
	if !m.Contains(index) {
		return "", false
	}
	return m.entries[index].Value.Value, true
}

// Entry returns the entry at index.
func (m *Map) Entry(index int32) (Entry, bool) {
	if !m.Contains(index) {
		return Entry{}, false
	}
	return m.entries[index], true
}

// Resolve returns the display string of n, including its instance suffix.
func (m *Map) Resolve(n types.FName) (string, error) {
	v, ok := m.Value(n.Index)
	if !ok {
		return "", codecerr.UnresolvedReference(codecerr.NoOffset, "name", int64(n.Index), len(m.entries))
	}
	return n.Format(v), nil
}

// String resolves n, returning a placeholder for unresolvable names. It is
// meant for logs and error messages.
func (m *Map) String(n types.FName) string {
	s, err := m.Resolve(n)
	if err != nil {
		return "<invalid name>"
	}
	return s
}

// IsNone reports whether n is the "None" terminator.
func (m *Map) IsNone(n types.FName) bool {
	v, ok := m.Value(n.Index)
	return ok && n.Number == 0 && v == None
}

// All iterates entries in table order.
func (m *Map) All() iter.Seq2[int32, Entry] {
	return func(yield func(int32, Entry) bool) {
		for i, e := range m.entries {
			if !yield(int32(i), e) { //nolint:gosec // bounded by table length
				return
			}
		}
	}
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	out := &Map{
		entries: append([]Entry(nil), m.entries...),
		lookup:  make(map[string]int32, len(m.lookup)),
	}
	for k, v := range m.lookup {
		out.lookup[k] = v
	}
	return out
}

// Writer is the subset of an archive writer the table needs.
type Writer interface {
	WriteFString(s types.FString)
	WriteUint16(v uint16)
}

// WriteAll writes every entry in table order. Hashes follow each string
// when withHashes is set.
func (m *Map) WriteAll(w Writer, withHashes bool) {
	for _, e := range m.entries {
		w.WriteFString(e.Value)
		if withHashes {
			w.WriteUint16(e.NonCasePreservingHash)
			w.WriteUint16(e.CasePreservingHash)
		}
	}
}

// Reader is the subset of an archive reader the table needs.
type Reader interface {
	ReadFString() types.FString
	ReadUint16() uint16
	Err() error
}

// ReadAll appends count entries read from r.
func (m *Map) ReadAll(r Reader, count int, withHashes bool) error {
	for range count {
		e := Entry{Value: r.ReadFString()}
		if withHashes {
			e.NonCasePreservingHash = r.ReadUint16()
			e.CasePreservingHash = r.ReadUint16()
		}
		if err := r.Err(); err != nil {
			return err
		}
		m.Append(e)
	}
	return nil
}
