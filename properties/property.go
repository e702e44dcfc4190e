package properties

import (
	"log/slog"
	"math"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/names"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

// Value is a decoded property payload. The concrete types in this package
// are the only implementations.
type Value interface {
	// Type returns the property class name, such as "IntProperty".
	Type() string

	readTag(r *archive.Reader)
	writeTag(w archive.Writer)
	read(r *archive.Reader, f *frame)
	write(w archive.Writer, f *frame)
}

// Property is one entry of a property list.
type Property struct {
	// Name is the tag name. It is only serialized by tagged lists.
	Name types.FName
	// TypeName is the serialized tag type. Tagged lists write it in place
	// of Value.Type() while it still resolves to that name.
	TypeName types.FName
	// Label is the resolved property name, from the name table for tagged
	// lists or from the schema for unversioned ones.
	Label string
	// Slot is the schema slot of an unversioned property, or -1.
	Slot       int
	ArrayIndex int32
	// GUID is the optional property GUID carried by tags of packages that
	// serialize one.
	GUID  *types.GUID
	Value Value
}

// New returns a tagged property named name, interning the name into nm.
func New(nm *names.Map, name string, v Value) *Property {
	return &Property{Name: nm.Name(name), TypeName: nm.Name(v.Type()), Label: name, Slot: -1, Value: v}
}

// List is a decoded property list.
type List struct {
	Properties []*Property
	// Header is the unversioned header, nil for tagged lists.
	Header *Header
	// Struct is the schema struct an unversioned list was decoded against.
	Struct string
}

// Find returns the first property labelled name.
func (l *List) Find(name string) (*Property, bool) {
	if l == nil {
		return nil, false
	}
	for _, p := range l.Properties {
		if p.Label == name {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of properties.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Properties)
}

type mode uint8

const (
	modeTagged mode = iota
	modeElement
	modeUnversioned
)

// frame is the decoding context of one value.
type frame struct {
	d    *Decoder
	mode mode
	// size is the tagged value size, or -1 when the wire form has none.
	size   int64
	name   string
	owner  string
	schema *unversioned.PropertyType
}

// element returns the frame for elements of the container described by f.
func (f *frame) element(schema *unversioned.PropertyType) *frame {
	m := modeElement
	if f.mode == modeUnversioned {
		m = modeUnversioned
	}
	return &frame{d: f.d, mode: m, size: -1, name: f.name, owner: f.owner, schema: schema}
}

// Decoder reads property lists.
type Decoder struct {
	logger *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger that reports raw fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// NewDecoder returns a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) log() *slog.Logger {
	if d == nil || d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}

// ReadList reads the property list of an object whose class or struct is
// owner. The wire form follows the reader's context.
func (d *Decoder) ReadList(r *archive.Reader, owner string) (*List, error) {
	var l *List
	if r.UnversionedProperties() {
		l = d.readUnversioned(r, owner)
	} else {
		l = d.readTagged(r, owner)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

// Write serializes l in the form it was decoded in.
func (l *List) Write(w archive.Writer) error {
	l.write(w)
	return w.Err()
}

func (l *List) write(w archive.Writer) {
	if l == nil {
		l = &List{}
	}
	if l.Header != nil {
		l.writeUnversioned(w)
		return
	}
	l.writeTagged(w)
}

// hasPropertyGUID reports whether tags carry the optional property GUID.
func hasPropertyGUID(c archive.Context) bool {
	return c.ObjectVersion() >= version.PropertyGUIDInPropertyTag
}

// Ident is a type or struct name carried by a tag. Name is the resolved
// string used for dispatch and schema lookups. FName is the name as
// serialized, instance number included, and is written back unchanged
// while it still resolves to Name.
type Ident struct {
	Name  string
	FName types.FName
}

// NewIdent interns name into nm and returns the identifier for it.
func NewIdent(nm *names.Map, name string) Ident {
	return Ident{Name: name, FName: nm.Name(name)}
}

func (i Ident) String() string { return i.Name }

func readIdent(r *archive.Reader) Ident {
	n := r.ReadFName()
	if r.Err() != nil {
		return Ident{}
	}
	s, _ := r.NameMap().Resolve(n)
	return Ident{Name: s, FName: n}
}

func writeIdent(w archive.Writer, id Ident) {
	name := id.Name
	if name == "" {
		name = names.None
	}
	if s, err := w.NameMap().Resolve(id.FName); err == nil && s == name {
		w.WriteFName(id.FName)
		return
	}
	w.WriteFName(w.NameMap().Name(name))
}

// patchSize overwrites the int32 at offset at with n.
func patchSize(w archive.Writer, at, n int64, what string) {
	if n > math.MaxInt32 {
		w.Fail(codecerr.SizeMismatch(what, math.MaxInt32, n))
		return
	}
	end := w.Position()
	w.SetPosition(at)
	w.WriteInt32(int32(n))
	w.SetPosition(end)
}
