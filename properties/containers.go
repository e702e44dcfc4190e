package properties

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/names"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

type elementRole uint8

const (
	roleElement elementRole = iota
	roleMapKey
	roleMapValue
)

// elementSpec builds the values of one container slot. Elements carry no
// tags, so struct and byte elements need their details resolved up front.
type elementSpec struct {
	typeName   string
	structType Ident
	byteAsName bool
	schema     *unversioned.PropertyType
}

func (e *elementSpec) new(at int64) (Value, error) {
	if e.schema != nil {
		return newSchemaValue(e.schema, at)
	}
	v, ok := newValue(e.typeName)
	if !ok {
		return nil, codecerr.UnknownType(at, "element type", e.typeName)
	}
	switch t := v.(type) {
	case *StructValue:
		t.StructType = e.structType
	case *ByteValue:
		t.IsName = e.byteAsName
	}
	return v, nil
}

func (f *frame) elementSpec(c archive.Context, typeName string, role elementRole) *elementSpec {
	e := &elementSpec{typeName: typeName}
	if f.mode == modeUnversioned {
		if f.schema != nil {
			e.schema = f.schema.Inner
			if role == roleMapValue {
				e.schema = f.schema.Value
			}
		}
		return e
	}
	switch typeName {
	case "StructProperty":
		e.structType = Ident{Name: f.elementStruct(c, role)}
	case "ByteProperty":
		// Enum-backed bytes are stored as the enumerator's FName.
		t := f.elementSchema(c, role)
		e.byteAsName = t != nil && t.Kind == unversioned.KindByte && t.EnumName != "" && t.EnumName != names.None
	}
	return e
}

// elementStruct resolves the struct type of container elements from the
// configured overrides, then the schema. An empty result decodes the
// elements as generic property lists.
func (f *frame) elementStruct(c archive.Context, role elementRole) string {
	o := c.Overrides()
	var (
		s  string
		ok bool
	)
	switch role {
	case roleMapKey:
		s, ok = o.MapKeyStruct(f.name)
	case roleMapValue:
		s, ok = o.MapValueStruct(f.name)
	default:
		s, ok = o.ArrayStructType(f.name)
	}
	if ok {
		return s
	}
	if t := f.elementSchema(c, role); t != nil && t.Kind == unversioned.KindStruct {
		return t.StructName
	}
	return ""
}

// elementSchema returns the schema type of the container slot, or nil when
// the schema does not know the property.
func (f *frame) elementSchema(c archive.Context, role elementRole) *unversioned.PropertyType {
	schema := c.Schema()
	if schema == nil {
		return nil
	}
	p, found := unversioned.FindProperty(schema, f.owner, f.name)
	if !found {
		return nil
	}
	if role == roleMapValue {
		return p.Type.Value
	}
	return p.Type.Inner
}

func readElements(r *archive.Reader, ef *frame, e *elementSpec, n int) []Value {
	if n == 0 {
		return nil
	}
	out := make([]Value, 0, n)
	for range n {
		v, err := e.new(r.Position())
		if err != nil {
			r.Fail(err)
			return out
		}
		v.read(r, ef)
		if r.Err() != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}

func writeElements(w archive.Writer, ef *frame, values []Value) {
	for _, v := range values {
		v.write(w, ef)
	}
}

func writeCount(w archive.Writer, n int) {
	w.WriteInt32(int32(n)) //nolint:gosec // element counts are bounded by decoded int32 counts
}

// InnerTag is the full element tag that struct arrays carry in tagged
// packages. Its size field is recomputed on write.
type InnerTag struct {
	Name       types.FName
	TypeName   Ident
	ArrayIndex int32
	StructType Ident
	StructGUID types.GUID
	GUID       *types.GUID
}

func readInnerTag(r *archive.Reader) *InnerTag {
	t := &InnerTag{Name: r.ReadFName(), TypeName: readIdent(r)}
	r.ReadInt32()
	t.ArrayIndex = r.ReadInt32()
	t.StructType = readIdent(r)
	if r.ObjectVersion() >= version.StructGUIDInPropertyTag {
		t.StructGUID = r.ReadGUID()
	}
	if hasPropertyGUID(r) && r.ReadBool8() {
		g := r.ReadGUID()
		t.GUID = &g
	}
	return t
}

// write emits the tag and returns the offset of its size field.
func (t *InnerTag) write(w archive.Writer) int64 {
	w.WriteFName(t.Name)
	writeIdent(w, t.TypeName)
	at := w.Position()
	w.WriteInt32(0)
	w.WriteInt32(t.ArrayIndex)
	writeIdent(w, t.StructType)
	if w.ObjectVersion() >= version.StructGUIDInPropertyTag {
		w.WriteGUID(t.StructGUID)
	}
	if hasPropertyGUID(w) {
		w.WriteBool8(t.GUID != nil)
		if t.GUID != nil {
			w.WriteGUID(*t.GUID)
		}
	}
	return at
}

// ArrayValue is an ArrayProperty.
type ArrayValue struct {
	InnerType Ident
	InnerTag  *InnerTag
	Elements  []Value
}

func (*ArrayValue) Type() string { return "ArrayProperty" }

func (v *ArrayValue) readTag(r *archive.Reader) {
	if r.ObjectVersion() >= version.ArrayPropertyInnerTags {
		v.InnerType = readIdent(r)
	}
}

func (v *ArrayValue) writeTag(w archive.Writer) {
	if w.ObjectVersion() >= version.ArrayPropertyInnerTags {
		writeIdent(w, v.InnerType)
	}
}

func (v *ArrayValue) read(r *archive.Reader, f *frame) {
	n := r.ReadCount(1)
	if r.Err() != nil {
		return
	}
	e := f.elementSpec(r, v.InnerType.Name, roleElement)
	if f.mode == modeTagged {
		rest := f.size - 4
		switch v.InnerType.Name {
		case "StructProperty":
			// Empty arrays written by some engine versions omit the tag.
			if r.ObjectVersion() >= version.InnerArrayTagInfo && (n > 0 || rest > 0) {
				v.InnerTag = readInnerTag(r)
				e.structType = v.InnerTag.StructType
			}
		case "ByteProperty":
			e.byteAsName = n > 0 && rest == int64(n)*8
		}
	}
	v.Elements = readElements(r, f.element(e.schema), e, n)
}

func (v *ArrayValue) write(w archive.Writer, f *frame) {
	writeCount(w, len(v.Elements))
	ef := f.element(nil)
	if v.InnerTag == nil {
		writeElements(w, ef, v.Elements)
		return
	}
	at := v.InnerTag.write(w)
	start := w.Position()
	writeElements(w, ef, v.Elements)
	patchSize(w, at, w.Position()-start, "array inner tag")
}

// SetValue is a SetProperty.
type SetValue struct {
	InnerType Ident
	Removed   []Value
	Elements  []Value
}

func (*SetValue) Type() string { return "SetProperty" }

func (v *SetValue) readTag(r *archive.Reader) { v.InnerType = readIdent(r) }
func (v *SetValue) writeTag(w archive.Writer) { writeIdent(w, v.InnerType) }

func (v *SetValue) read(r *archive.Reader, f *frame) {
	e := f.elementSpec(r, v.InnerType.Name, roleElement)
	ef := f.element(e.schema)
	v.Removed = readElements(r, ef, e, r.ReadCount(1))
	if r.Err() != nil {
		return
	}
	v.Elements = readElements(r, ef, e, r.ReadCount(1))
}

func (v *SetValue) write(w archive.Writer, f *frame) {
	ef := f.element(nil)
	writeCount(w, len(v.Removed))
	writeElements(w, ef, v.Removed)
	writeCount(w, len(v.Elements))
	writeElements(w, ef, v.Elements)
}

// MapEntry is one key/value pair of a map.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapValue is a MapProperty. Removed holds the keys of the removal list
// that delta-serialized maps carry.
type MapValue struct {
	KeyType   Ident
	ValueType Ident
	Removed   []Value
	Entries   []MapEntry
}

func (*MapValue) Type() string { return "MapProperty" }

func (v *MapValue) readTag(r *archive.Reader) {
	v.KeyType = readIdent(r)
	v.ValueType = readIdent(r)
}

func (v *MapValue) writeTag(w archive.Writer) {
	writeIdent(w, v.KeyType)
	writeIdent(w, v.ValueType)
}

func (v *MapValue) read(r *archive.Reader, f *frame) {
	ks := f.elementSpec(r, v.KeyType.Name, roleMapKey)
	vs := f.elementSpec(r, v.ValueType.Name, roleMapValue)
	kf, vf := f.element(ks.schema), f.element(vs.schema)

	v.Removed = readElements(r, kf, ks, r.ReadCount(1))
	n := r.ReadCount(2)
	if r.Err() != nil {
		return
	}
	for range n {
		k := readElements(r, kf, ks, 1)
		val := readElements(r, vf, vs, 1)
		if r.Err() != nil {
			return
		}
		v.Entries = append(v.Entries, MapEntry{Key: k[0], Value: val[0]})
	}
}

func (v *MapValue) write(w archive.Writer, f *frame) {
	ef := f.element(nil)
	writeCount(w, len(v.Removed))
	writeElements(w, ef, v.Removed)
	writeCount(w, len(v.Entries))
	for _, e := range v.Entries {
		e.Key.write(w, ef)
		e.Value.write(w, ef)
	}
}
