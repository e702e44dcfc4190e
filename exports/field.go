package exports

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// Field is the UField part of a payload. Next is only serialized by
// packages older than FrameworkObjectVersion RemoveUFieldNext.
type Field struct {
	Next types.PackageIndex
}

func hasFieldNext(c archive.Context) bool {
	v, ok := c.CustomVersion(version.FrameworkObjectVersion)
	return !ok || v < version.FrameworkRemoveUFieldNext
}

func readField(r *archive.Reader) Field {
	if !hasFieldNext(r) {
		return Field{}
	}
	return Field{Next: r.ReadPackageIndex()}
}

func (f Field) write(w archive.Writer) {
	if hasFieldNext(w) {
		w.WritePackageIndex(f.Next)
	}
}

// propertyLayout describes the kind-specific tail of a property
// descriptor.
type propertyLayout struct {
	// refs is the number of package indices, e.g. a property class and a
	// meta class.
	refs int
	// nested is the number of nested descriptors of child properties.
	nested int
	bool   bool
	// fieldClass marks the field path property's class name.
	fieldClass bool
}

var propertyLayouts = map[string]propertyLayout{
	"BoolProperty":                    {bool: true},
	"ByteProperty":                    {refs: 1},
	"Int8Property":                    {},
	"Int16Property":                   {},
	"IntProperty":                     {},
	"Int64Property":                   {},
	"UInt16Property":                  {},
	"UInt32Property":                  {},
	"UInt64Property":                  {},
	"FloatProperty":                   {},
	"DoubleProperty":                  {},
	"StrProperty":                     {},
	"NameProperty":                    {},
	"TextProperty":                    {},
	"ObjectProperty":                  {refs: 1},
	"WeakObjectProperty":              {refs: 1},
	"LazyObjectProperty":              {refs: 1},
	"SoftObjectProperty":              {refs: 1},
	"AssetObjectProperty":             {refs: 1},
	"ObjectPtrProperty":               {refs: 1},
	"InterfaceProperty":               {refs: 1},
	"StructProperty":                  {refs: 1},
	"DelegateProperty":                {refs: 1},
	"MulticastDelegateProperty":       {refs: 1},
	"MulticastInlineDelegateProperty": {refs: 1},
	"MulticastSparseDelegateProperty": {refs: 1},
	"ClassProperty":                   {refs: 2},
	"ClassPtrProperty":                {refs: 2},
	"SoftClassProperty":               {refs: 2},
	"AssetClassProperty":              {refs: 2},
	"ArrayProperty":                   {nested: 1},
	"SetProperty":                     {nested: 1},
	"OptionalProperty":                {nested: 1},
	"MapProperty":                     {nested: 2},
	"EnumProperty":                    {refs: 1, nested: 1},
	"FieldPathProperty":               {fieldClass: true},
}

// MetaData is one editor metadata entry of a field.
type MetaData struct {
	Key   types.FName
	Value types.FString
}

// BoolLayout is the bit layout of a boolean child property.
type BoolLayout struct {
	FieldSize  uint8
	ByteOffset uint8
	ByteMask   uint8
	FieldMask  uint8
	NativeBool uint8
	Value      uint8
}

// FProperty is a child property descriptor of a struct.
type FProperty struct {
	// Type is the serialized class name, e.g. "ArrayProperty".
	Type          types.FName
	Name          types.FName
	Flags         uint32
	MetaData      []MetaData
	ArrayDim      int32
	ElementSize   int32
	PropertyFlags uint64
	RepIndex      uint16
	RepNotifyFunc types.FName
	RepCondition  uint8

	// References holds the kind's package indices in serialized order.
	References []types.PackageIndex
	Bool       *BoolLayout
	FieldClass types.FName
	// Children are the nested descriptors: the inner property of arrays,
	// sets and optionals, the key then value of maps and the underlying
	// property of enums.
	Children []*FProperty
}

const maxPropertyDepth = 32

func readFProperty(r *archive.Reader, depth int) *FProperty {
	if depth > maxPropertyDepth {
		r.Fail(codecerr.Structural(r.Position(), "child property nesting deeper than %d", maxPropertyDepth))
		return nil
	}
	start := r.Position()
	p := &FProperty{Type: r.ReadFName()}
	typeName := r.NameMap().String(p.Type)
	layout, ok := propertyLayouts[typeName]
	if r.Err() != nil {
		return nil
	}
	if !ok {
		r.Fail(codecerr.UnknownType(start, "child property", typeName))
		return nil
	}

	p.Name = r.ReadFName()
	p.Flags = r.ReadUint32()
	if !r.FilterEditorOnly() {
		n := r.ReadCount(12)
		for range n {
			p.MetaData = append(p.MetaData, MetaData{Key: r.ReadFName(), Value: r.ReadFString()})
		}
	}
	p.ArrayDim = r.ReadInt32()
	p.ElementSize = r.ReadInt32()
	p.PropertyFlags = r.ReadUint64()
	p.RepIndex = r.ReadUint16()
	p.RepNotifyFunc = r.ReadFName()
	p.RepCondition = r.ReadUint8()

	for range layout.refs {
		p.References = append(p.References, r.ReadPackageIndex())
	}
	if layout.bool {
		p.Bool = &BoolLayout{
			FieldSize:  r.ReadUint8(),
			ByteOffset: r.ReadUint8(),
			ByteMask:   r.ReadUint8(),
			FieldMask:  r.ReadUint8(),
			NativeBool: r.ReadUint8(),
			Value:      r.ReadUint8(),
		}
	}
	if layout.fieldClass {
		p.FieldClass = r.ReadFName()
	}
	for range layout.nested {
		child := readFProperty(r, depth+1)
		if child == nil {
			return nil
		}
		p.Children = append(p.Children, child)
	}
	if r.Err() != nil {
		return nil
	}
	return p
}

func (p *FProperty) write(w archive.Writer) {
	w.WriteFName(p.Type)
	w.WriteFName(p.Name)
	w.WriteUint32(p.Flags)
	if !w.FilterEditorOnly() {
		w.WriteInt32(int32(len(p.MetaData))) //nolint:gosec // bounded by decode
		for _, m := range p.MetaData {
			w.WriteFName(m.Key)
			w.WriteFString(m.Value)
		}
	}
	w.WriteInt32(p.ArrayDim)
	w.WriteInt32(p.ElementSize)
	w.WriteUint64(p.PropertyFlags)
	w.WriteUint16(p.RepIndex)
	w.WriteFName(p.RepNotifyFunc)
	w.WriteUint8(p.RepCondition)

	for _, ref := range p.References {
		w.WritePackageIndex(ref)
	}
	if b := p.Bool; b != nil {
		for _, v := range []uint8{b.FieldSize, b.ByteOffset, b.ByteMask, b.FieldMask, b.NativeBool, b.Value} {
			w.WriteUint8(v)
		}
	}
	typeName := w.NameMap().String(p.Type)
	if propertyLayouts[typeName].fieldClass {
		w.WriteFName(p.FieldClass)
	}
	for _, c := range p.Children {
		c.write(w)
	}
}

// UProperty is the descriptor stored by property exports, which older
// engines used instead of child properties.
type UProperty struct {
	Field         Field
	ArrayDim      int32
	PropertyFlags uint64
	RepNotifyFunc types.FName
	// RepCondition is only serialized by packages that carry a
	// replication condition.
	RepCondition uint8

	// References holds the kind's package indices in serialized order,
	// nested property exports included.
	References []types.PackageIndex
	BoolSize   uint8
	NativeBool uint8
}

// uPropertyRefs returns the layout of a property export of kind.
func uPropertyRefs(kind string) (propertyLayout, bool) {
	l, ok := propertyLayouts[kind]
	if !ok || l.fieldClass {
		return propertyLayout{}, false
	}
	// Nested properties are separate exports referenced by index.
	l.refs += l.nested
	l.nested = 0
	return l, true
}

func hasRepCondition(c archive.Context) bool {
	v, ok := c.CustomVersion(version.ReleaseObjectVersion)
	return ok && v >= version.ReleasePropertiesSerializeRepCondition
}

func readUProperty(r *archive.Reader, kind string) UProperty {
	layout, ok := uPropertyRefs(kind)
	if !ok {
		r.Fail(codecerr.UnknownType(r.Position(), "property export", kind))
		return UProperty{}
	}
	p := UProperty{Field: readField(r)}
	p.ArrayDim = r.ReadInt32()
	p.PropertyFlags = r.ReadUint64()
	p.RepNotifyFunc = r.ReadFName()
	if hasRepCondition(r) {
		p.RepCondition = r.ReadUint8()
	}
	for range layout.refs {
		p.References = append(p.References, r.ReadPackageIndex())
	}
	if layout.bool {
		p.BoolSize = r.ReadUint8()
		p.NativeBool = r.ReadUint8()
	}
	return p
}

func (p *UProperty) write(w archive.Writer, kind string) {
	layout, _ := uPropertyRefs(kind)
	p.Field.write(w)
	w.WriteInt32(p.ArrayDim)
	w.WriteUint64(p.PropertyFlags)
	w.WriteFName(p.RepNotifyFunc)
	if hasRepCondition(w) {
		w.WriteUint8(p.RepCondition)
	}
	for _, ref := range p.References {
		w.WritePackageIndex(ref)
	}
	if layout.bool {
		w.WriteUint8(p.BoolSize)
		w.WriteUint8(p.NativeBool)
	}
}
