package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GUID is an engine GUID in its serialized byte order: four little-endian
// uint32 components.
type GUID [16]byte

// GUIDFromParts builds a GUID from its four 32-bit components.
func GUIDFromParts(a, b, c, d uint32) GUID {
	var g GUID
	binary.LittleEndian.PutUint32(g[0:], a)
	binary.LittleEndian.PutUint32(g[4:], b)
	binary.LittleEndian.PutUint32(g[8:], c)
	binary.LittleEndian.PutUint32(g[12:], d)
	return g
}

// Parts returns the four 32-bit components.
func (g GUID) Parts() (a, b, c, d uint32) {
	return binary.LittleEndian.Uint32(g[0:]),
		binary.LittleEndian.Uint32(g[4:]),
		binary.LittleEndian.Uint32(g[8:]),
		binary.LittleEndian.Uint32(g[12:])
}

// IsZero reports whether every byte is zero.
func (g GUID) IsZero() bool { return g == GUID{} }

// String renders the engine's component form, e.g.
// "375EC13C-06E448FB-B50084F0-262A717E".
func (g GUID) String() string {
	a, b, c, d := g.Parts()
	return fmt.Sprintf("%08X-%08X-%08X-%08X", a, b, c, d)
}

// UUID reinterprets the serialized bytes as an RFC 4122 UUID.
func (g GUID) UUID() uuid.UUID { return uuid.UUID(g) }

// ParseGUID accepts either the engine component form produced by String or
// any form understood by uuid.Parse (interpreted as raw bytes).
func ParseGUID(s string) (GUID, error) {
	if parts := strings.Split(s, "-"); len(parts) == 4 {
		var v [4]uint32
		for i, p := range parts {
			n, err := strconv.ParseUint(p, 16, 32)
			if err != nil || len(p) != 8 {
				return GUID{}, fmt.Errorf("parse guid %q: bad component %q", s, p)
			}
			v[i] = uint32(n)
		}
		return GUIDFromParts(v[0], v[1], v[2], v[3]), nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, fmt.Errorf("parse guid %q: %w", s, err)
	}
	return GUID(u), nil
}

// NewGUID returns a random GUID.
func NewGUID() GUID { return GUID(uuid.New()) }
