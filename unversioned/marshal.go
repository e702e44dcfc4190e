package unversioned

import (
	"bytes"
	"fmt"
	"math"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// MarshalBinary encodes the mappings using u.Version and u.Compression.
func (u *Usmap) MarshalBinary() ([]byte, error) {
	if u.Version > VersionLatest {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, u.Version)
	}
	names := newNameTable()
	body := &writer{}
	u.writeBody(body, names)

	payload := &writer{}
	payload.u32(uint32(len(names.list))) //nolint:gosec // bounded by struct and enum counts
	for _, n := range names.list {
		if u.Version >= VersionLongFName {
			if len(n) > math.MaxUint16 {
				return nil, fmt.Errorf("usmap: name %q too long", n[:32])
			}
			payload.u16(uint16(len(n)))
		} else {
			if len(n) > math.MaxUint8 {
				return nil, fmt.Errorf("usmap: name %q too long for version %d", n[:32], u.Version)
			}
			payload.u8(uint8(len(n)))
		}
		payload.raw([]byte(n))
	}
	payload.raw(body.buf)

	compressed, err := compress(u.Compression, payload.buf)
	if err != nil {
		return nil, err
	}

	out := &writer{}
	out.u16(Magic)
	out.u8(uint8(u.Version))
	if u.Version >= VersionPackageVersioning {
		if u.Versioning == nil {
			out.u32(0)
		} else {
			out.u32(1)
			v := u.Versioning
			out.u32(uint32(v.ObjectVersion))        //nolint:gosec // reinterpretation
			out.u32(uint32(v.ObjectVersionUE5))     //nolint:gosec // reinterpretation
			out.u32(uint32(v.CustomVersions.Len())) //nolint:gosec // bounded
			for _, cv := range v.CustomVersions.All() {
				out.raw(cv.Key[:])
				out.u32(uint32(cv.Version)) //nolint:gosec // reinterpretation
			}
			out.u32(v.NetCL)
		}
	}
	out.u8(uint8(u.Compression))
	out.u32(uint32(len(compressed)))  //nolint:gosec // bounded by DefaultMaxPayloadSize
	out.u32(uint32(len(payload.buf))) //nolint:gosec // bounded by DefaultMaxPayloadSize
	out.raw(compressed)
	return out.buf, nil
}

func (u *Usmap) writeBody(w *writer, names *nameTable) {
	w.u32(uint32(len(u.enumOrder))) //nolint:gosec // bounded
	for _, name := range u.enumOrder {
		e := u.enums[name]
		w.u32(names.index(e.Name))
		if u.Version >= VersionLargeEnums {
			w.u16(uint16(len(e.Values))) //nolint:gosec // enum sizes fit the format
		} else {
			w.u8(uint8(len(e.Values))) //nolint:gosec // enum sizes fit the format
		}
		for _, v := range e.Values {
			if u.Version >= VersionExplicitEnumValues {
				w.i64(v.Value)
			}
			w.u32(names.index(v.Name))
		}
	}

	w.u32(uint32(len(u.structOrder))) //nolint:gosec // bounded
	for _, name := range u.structOrder {
		s := u.structs[name]
		w.u32(names.index(s.Name))
		if s.Super == "" {
			w.u32(math.MaxUint32)
		} else {
			w.u32(names.index(s.Super))
		}
		w.u16(s.PropertyCount)
		w.u16(uint16(len(s.Properties))) //nolint:gosec // bounded by PropertyCount
		for _, p := range s.Properties {
			w.u16(p.SchemaIndex)
			w.u8(p.ArraySize)
			w.u32(names.index(p.Name))
			writeType(w, names, &p.Type)
		}
	}
}

func writeType(w *writer, names *nameTable, t *PropertyType) {
	w.u8(uint8(t.Kind))
	switch t.Kind {
	case KindEnum:
		writeType(w, names, orUnknown(t.Inner))
		w.u32(names.index(t.EnumName))
	case KindStruct:
		w.u32(names.index(t.StructName))
	case KindArray, KindSet, KindOptional:
		writeType(w, names, orUnknown(t.Inner))
	case KindMap:
		writeType(w, names, orUnknown(t.Inner))
		writeType(w, names, orUnknown(t.Value))
	}
}

func orUnknown(t *PropertyType) *PropertyType {
	if t == nil {
		return &PropertyType{Kind: KindByte}
	}
	return t
}

type nameTable struct {
	list   []string
	lookup map[string]uint32
}

func newNameTable() *nameTable {
	return &nameTable{lookup: make(map[string]uint32)}
}

func (n *nameTable) index(s string) uint32 {
	if i, ok := n.lookup[s]; ok {
		return i
	}
	i := uint32(len(n.list)) //nolint:gosec // bounded
	n.list = append(n.list, s)
	n.lookup[s] = i
	return i
}

func compress(method Compression, payload []byte) ([]byte, error) {
	switch method {
	case CompressionNone:
		return payload, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(payload, nil), nil
	case CompressionBrotli:
		var buf bytes.Buffer
		bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := bw.Write(payload); err != nil {
			return nil, err
		}
		if err := bw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, method)
	}
}
