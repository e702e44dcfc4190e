package unversioned

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/uasset/internal/sizing"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// Magic opens every usmap file.
const Magic uint16 = 0x30C4

// Version is the usmap file format version.
type Version uint8

const (
	VersionInitial Version = iota
	VersionPackageVersioning
	VersionLongFName
	VersionLargeEnums
	VersionExplicitEnumValues
	VersionLatest = VersionExplicitEnumValues
)

// Compression is the payload compression method of a usmap file.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionOodle
	CompressionBrotli
	CompressionZstd
)

// String returns the method name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionOodle:
		return "oodle"
	case CompressionBrotli:
		return "brotli"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// DefaultMaxPayloadSize caps the decompressed payload of a mappings file.
const DefaultMaxPayloadSize = 256 << 20

var (
	// ErrInvalidMagic is returned for data that is not a usmap file.
	ErrInvalidMagic = errors.New("usmap: invalid magic")
	// ErrUnsupportedCompression is returned for Oodle and unknown methods.
	ErrUnsupportedCompression = errors.New("usmap: unsupported compression")
	// ErrUnsupportedVersion is returned for format versions newer than known.
	ErrUnsupportedVersion = errors.New("usmap: unsupported version")
	// ErrSizeOverflow is returned when a payload exceeds its limits.
	ErrSizeOverflow = errors.New("usmap: size overflow")
)

// Versioning is the optional engine version block of a usmap file.
type Versioning struct {
	ObjectVersion    version.ObjectVersion
	ObjectVersionUE5 version.ObjectVersionUE5
	CustomVersions   *version.CustomVersions
	NetCL            uint32
}

// EnumValue is one enumerator.
type EnumValue struct {
	Value int64
	Name  string
}

// Enum is an enum declared in a mappings file.
type Enum struct {
	Name   string
	Values []EnumValue
}

// Usmap is a parsed mappings file. It implements Schema.
type Usmap struct {
	Version     Version
	Compression Compression
	Versioning  *Versioning

	enums       map[string]*Enum
	enumOrder   []string
	structs     map[string]*Struct
	structOrder []string
}

var _ Schema = (*Usmap)(nil)

// New returns an empty mappings table.
func New() *Usmap {
	return &Usmap{
		Version: VersionLatest,
		enums:   make(map[string]*Enum),
		structs: make(map[string]*Struct),
	}
}

// AddStruct registers s, replacing any struct of the same name.
func (u *Usmap) AddStruct(s *Struct) {
	if s.slots == nil {
		s.index()
	}
	if _, ok := u.structs[s.Name]; !ok {
		u.structOrder = append(u.structOrder, s.Name)
	}
	u.structs[s.Name] = s
}

// AddEnum registers e, replacing any enum of the same name.
func (u *Usmap) AddEnum(e *Enum) {
	if _, ok := u.enums[e.Name]; !ok {
		u.enumOrder = append(u.enumOrder, e.Name)
	}
	u.enums[e.Name] = e
}

// Struct implements Schema.
func (u *Usmap) Struct(name string) (*Struct, bool) {
	s, ok := u.structs[name]
	return s, ok
}

// Enum returns the named enum.
func (u *Usmap) Enum(name string) (*Enum, bool) {
	e, ok := u.enums[name]
	return e, ok
}

// EnumName returns the enumerator of enum at position index.
func (u *Usmap) EnumName(enum string, index int) (string, bool) {
	e, ok := u.enums[enum]
	if !ok || index < 0 || index >= len(e.Values) {
		return "", false
	}
	return e.Values[index].Name, true
}

// PropertyType implements Schema.
func (u *Usmap) PropertyType(className, propertyName string) (string, bool) {
	p, ok := FindProperty(u, className, propertyName)
	if !ok {
		return "", false
	}
	return p.Type.Kind.String(), true
}

// StructCount returns the number of structs.
func (u *Usmap) StructCount() int { return len(u.structs) }

// StructNames returns the struct names in file order.
func (u *Usmap) StructNames() []string { return slices.Clone(u.structOrder) }

// EnumCount returns the number of enums.
func (u *Usmap) EnumCount() int { return len(u.enums) }

// Load reads and parses a mappings file from disk.
func Load(path string) (*Usmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// Parse decodes a mappings file.
func Parse(data []byte) (*Usmap, error) {
	r := &reader{data: data}
	if r.u16() != Magic {
		return nil, ErrInvalidMagic
	}
	u := New()
	u.Version = Version(r.u8())
	if u.Version > VersionLatest {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, u.Version)
	}
	if u.Version >= VersionPackageVersioning && r.u32() != 0 {
		u.Versioning = readVersioning(r)
	}
	u.Compression = Compression(r.u8())
	compressedSize := r.u32()
	size := r.u32()
	if r.err != nil {
		return nil, fmt.Errorf("usmap header: %w", r.err)
	}
	compressed := r.bytes(int(compressedSize))
	if r.err != nil {
		return nil, fmt.Errorf("usmap payload: %w", r.err)
	}
	payload, err := decompress(u.Compression, compressed, size)
	if err != nil {
		return nil, err
	}
	if err := u.readPayload(&reader{data: payload}); err != nil {
		return nil, err
	}
	return u, nil
}

func readVersioning(r *reader) *Versioning {
	v := &Versioning{
		ObjectVersion:    version.ObjectVersion(r.i32()),
		ObjectVersionUE5: version.ObjectVersionUE5(r.i32()),
		CustomVersions:   version.NewCustomVersions(),
	}
	n := r.count(20)
	for range n {
		var key types.GUID
		copy(key[:], r.bytes(16))
		v.CustomVersions.Set(key, r.i32())
	}
	v.NetCL = r.u32()
	return v
}

func decompress(method Compression, src []byte, size uint32) ([]byte, error) {
	if uint64(size) > DefaultMaxPayloadSize {
		return nil, ErrSizeOverflow
	}
	switch method {
	case CompressionNone:
		if len(src) != int(size) {
			return nil, fmt.Errorf("usmap: stored payload is %d bytes, header says %d", len(src), size)
		}
		return src, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(DefaultMaxPayloadSize))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(src, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("usmap: zstd: %w", err)
		}
		return checkSize(out, size)
	case CompressionBrotli:
		out, err := sizing.ReadAllWithLimit(brotli.NewReader(bytes.NewReader(src)), uint64(size), ErrSizeOverflow)
		if err != nil {
			return nil, fmt.Errorf("usmap: brotli: %w", err)
		}
		return checkSize(out, size)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, method)
	}
}

func checkSize(out []byte, size uint32) ([]byte, error) {
	if len(out) != int(size) {
		return nil, fmt.Errorf("usmap: decompressed %d bytes, header says %d", len(out), size)
	}
	return out, nil
}

func (u *Usmap) readPayload(r *reader) error {
	nameCount := r.count(1)
	nameTable := make([]string, 0, nameCount)
	for range nameCount {
		var n int
		if u.Version >= VersionLongFName {
			n = int(r.u16())
		} else {
			n = int(r.u8())
		}
		nameTable = append(nameTable, string(r.bytes(n)))
	}
	if r.err != nil {
		return fmt.Errorf("usmap names: %w", r.err)
	}
	name := func() string {
		idx := r.u32()
		if idx == math.MaxUint32 {
			return ""
		}
		if int(idx) >= len(nameTable) {
			r.fail(fmt.Errorf("name index %d outside table of %d", idx, len(nameTable)))
			return ""
		}
		return nameTable[idx]
	}

	enumCount := r.count(5)
	for range enumCount {
		e := &Enum{Name: name()}
		var n int
		if u.Version >= VersionLargeEnums {
			n = int(r.u16())
		} else {
			n = int(r.u8())
		}
		for i := range n {
			v := EnumValue{Value: int64(i)}
			if u.Version >= VersionExplicitEnumValues {
				v.Value = r.i64()
			}
			v.Name = name()
			e.Values = append(e.Values, v)
		}
		if r.err != nil {
			return fmt.Errorf("usmap enums: %w", r.err)
		}
		u.AddEnum(e)
	}

	structCount := r.count(12)
	for range structCount {
		s := &Struct{Name: name(), Super: name()}
		s.PropertyCount = r.u16()
		serializable := int(r.u16())
		for range serializable {
			p := Property{SchemaIndex: r.u16(), ArraySize: r.u8(), Name: name()}
			p.Type = readType(r, name, 0)
			s.Properties = append(s.Properties, p)
			if r.err != nil {
				break
			}
		}
		if r.err != nil {
			return fmt.Errorf("usmap struct %q: %w", s.Name, r.err)
		}
		u.AddStruct(s)
	}
	return nil
}

const maxTypeDepth = 32

func readType(r *reader, name func() string, depth int) PropertyType {
	if depth > maxTypeDepth {
		r.fail(errors.New("property type nesting too deep"))
		return PropertyType{Kind: KindUnknown}
	}
	t := PropertyType{Kind: Kind(r.u8())}
	switch t.Kind {
	case KindEnum:
		inner := readType(r, name, depth+1)
		t.Inner = &inner
		t.EnumName = name()
	case KindStruct:
		t.StructName = name()
	case KindArray, KindSet, KindOptional:
		inner := readType(r, name, depth+1)
		t.Inner = &inner
	case KindMap:
		key := readType(r, name, depth+1)
		val := readType(r, name, depth+1)
		t.Inner, t.Value = &key, &val
	}
	return t
}
