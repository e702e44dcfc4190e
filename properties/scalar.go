package properties

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/unversioned"
)

// noTag is embedded by values whose tags carry no type-specific data.
type noTag struct{}

func (noTag) readTag(*archive.Reader) {}
func (noTag) writeTag(archive.Writer) {}

// BoolValue is a BoolProperty. Tagged lists store the value in the tag and
// record a size of zero.
type BoolValue struct {
	Value bool
	// Raw is the serialized byte when it is neither 0 nor 1. It is written
	// back while Value stays true.
	Raw uint8
}

func (*BoolValue) Type() string { return "BoolProperty" }

func (v *BoolValue) readTag(r *archive.Reader) { v.readByte(r) }

func (v *BoolValue) writeTag(w archive.Writer) { v.writeByte(w) }

func (v *BoolValue) read(r *archive.Reader, f *frame) {
	if f.mode != modeTagged {
		v.readByte(r)
	}
}

func (v *BoolValue) write(w archive.Writer, f *frame) {
	if f.mode != modeTagged {
		v.writeByte(w)
	}
}

func (v *BoolValue) readByte(r *archive.Reader) {
	b := r.ReadUint8()
	v.Value = b != 0
	if b > 1 {
		v.Raw = b
	}
}

func (v *BoolValue) writeByte(w archive.Writer) {
	if v.Value && v.Raw > 1 {
		w.WriteUint8(v.Raw)
		return
	}
	w.WriteBool8(v.Value)
}

type Int8Value struct {
	noTag
	Value int8
}

func (*Int8Value) Type() string                       { return "Int8Property" }
func (v *Int8Value) read(r *archive.Reader, _ *frame) { v.Value = r.ReadInt8() }
func (v *Int8Value) write(w archive.Writer, _ *frame) { w.WriteInt8(v.Value) }

type Int16Value struct {
	noTag
	Value int16
}

func (*Int16Value) Type() string                       { return "Int16Property" }
func (v *Int16Value) read(r *archive.Reader, _ *frame) { v.Value = r.ReadInt16() }
func (v *Int16Value) write(w archive.Writer, _ *frame) { w.WriteInt16(v.Value) }

type IntValue struct {
	noTag
	Value int32
}

func (*IntValue) Type() string                       { return "IntProperty" }
func (v *IntValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadInt32() }
func (v *IntValue) write(w archive.Writer, _ *frame) { w.WriteInt32(v.Value) }

type Int64Value struct {
	noTag
	Value int64
}

func (*Int64Value) Type() string                       { return "Int64Property" }
func (v *Int64Value) read(r *archive.Reader, _ *frame) { v.Value = r.ReadInt64() }
func (v *Int64Value) write(w archive.Writer, _ *frame) { w.WriteInt64(v.Value) }

type UInt16Value struct {
	noTag
	Value uint16
}

func (*UInt16Value) Type() string                       { return "UInt16Property" }
func (v *UInt16Value) read(r *archive.Reader, _ *frame) { v.Value = r.ReadUint16() }
func (v *UInt16Value) write(w archive.Writer, _ *frame) { w.WriteUint16(v.Value) }

type UInt32Value struct {
	noTag
	Value uint32
}

func (*UInt32Value) Type() string                       { return "UInt32Property" }
func (v *UInt32Value) read(r *archive.Reader, _ *frame) { v.Value = r.ReadUint32() }
func (v *UInt32Value) write(w archive.Writer, _ *frame) { w.WriteUint32(v.Value) }

type UInt64Value struct {
	noTag
	Value uint64
}

func (*UInt64Value) Type() string                       { return "UInt64Property" }
func (v *UInt64Value) read(r *archive.Reader, _ *frame) { v.Value = r.ReadUint64() }
func (v *UInt64Value) write(w archive.Writer, _ *frame) { w.WriteUint64(v.Value) }

type FloatValue struct {
	noTag
	Value float32
}

func (*FloatValue) Type() string                       { return "FloatProperty" }
func (v *FloatValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadFloat32() }
func (v *FloatValue) write(w archive.Writer, _ *frame) { w.WriteFloat32(v.Value) }

type DoubleValue struct {
	noTag
	Value float64
}

func (*DoubleValue) Type() string                       { return "DoubleProperty" }
func (v *DoubleValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadFloat64() }
func (v *DoubleValue) write(w archive.Writer, _ *frame) { w.WriteFloat64(v.Value) }

// ByteValue is a ByteProperty. Bytes backed by an enum are stored as the
// enumerator name in tagged packages.
type ByteValue struct {
	// EnumType is the enum named by the tag, "None" for plain bytes.
	EnumType Ident
	IsName   bool
	Value    uint8
	Name     types.FName
}

func (*ByteValue) Type() string { return "ByteProperty" }

func (v *ByteValue) readTag(r *archive.Reader) { v.EnumType = readIdent(r) }

func (v *ByteValue) writeTag(w archive.Writer) { writeIdent(w, v.EnumType) }

func (v *ByteValue) read(r *archive.Reader, f *frame) {
	switch f.mode {
	case modeTagged:
		v.IsName = f.size == 8
	case modeUnversioned:
		v.IsName = false
	}
	if v.IsName {
		v.Name = r.ReadFName()
		return
	}
	v.Value = r.ReadUint8()
}

func (v *ByteValue) write(w archive.Writer, _ *frame) {
	if v.IsName {
		w.WriteFName(v.Name)
		return
	}
	w.WriteUint8(v.Value)
}

// EnumValue is an EnumProperty. Unversioned lists store the enumerator's
// index as an integer of the enum's underlying type.
type EnumValue struct {
	EnumType    Ident
	Value       types.FName
	Unversioned bool
	Underlying  unversioned.Kind
	Index       int64
}

func (*EnumValue) Type() string { return "EnumProperty" }

func (v *EnumValue) readTag(r *archive.Reader) { v.EnumType = readIdent(r) }

func (v *EnumValue) writeTag(w archive.Writer) { writeIdent(w, v.EnumType) }

func (v *EnumValue) read(r *archive.Reader, f *frame) {
	if f.mode != modeUnversioned {
		v.Value = r.ReadFName()
		return
	}
	v.Unversioned = true
	switch v.Underlying {
	case unversioned.KindInt8:
		v.Index = int64(r.ReadInt8())
	case unversioned.KindInt16:
		v.Index = int64(r.ReadInt16())
	case unversioned.KindUInt16:
		v.Index = int64(r.ReadUint16())
	case unversioned.KindInt:
		v.Index = int64(r.ReadInt32())
	case unversioned.KindUInt32:
		v.Index = int64(r.ReadUint32())
	case unversioned.KindInt64, unversioned.KindUInt64:
		v.Index = r.ReadInt64()
	default:
		v.Index = int64(r.ReadUint8())
	}
}

//nolint:gosec // narrowing back to the width the value was read with
func (v *EnumValue) write(w archive.Writer, _ *frame) {
	if !v.Unversioned {
		w.WriteFName(v.Value)
		return
	}
	switch v.Underlying {
	case unversioned.KindInt8:
		w.WriteInt8(int8(v.Index))
	case unversioned.KindInt16, unversioned.KindUInt16:
		w.WriteUint16(uint16(v.Index))
	case unversioned.KindInt, unversioned.KindUInt32:
		w.WriteUint32(uint32(v.Index))
	case unversioned.KindInt64, unversioned.KindUInt64:
		w.WriteInt64(v.Index)
	default:
		w.WriteUint8(uint8(v.Index))
	}
}

type StrValue struct {
	noTag
	Value types.FString
}

func (*StrValue) Type() string                       { return "StrProperty" }
func (v *StrValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadFString() }
func (v *StrValue) write(w archive.Writer, _ *frame) { w.WriteFString(v.Value) }

type NameValue struct {
	noTag
	Value types.FName
}

func (*NameValue) Type() string                       { return "NameProperty" }
func (v *NameValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadFName() }
func (v *NameValue) write(w archive.Writer, _ *frame) { w.WriteFName(v.Value) }

// GuidValue is a bare 16-byte GUID property.
type GuidValue struct {
	noTag
	Value types.GUID
}

func (*GuidValue) Type() string                       { return "GuidProperty" }
func (v *GuidValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadGUID() }
func (v *GuidValue) write(w archive.Writer, _ *frame) { w.WriteGUID(v.Value) }
