package properties

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// StructValue is a StructProperty. Structs with a native binary layout
// decode into Native; all others hold a nested property list.
type StructValue struct {
	StructType Ident
	StructGUID types.GUID
	Native     Native
	Properties *List
}

func (*StructValue) Type() string { return "StructProperty" }

func (v *StructValue) readTag(r *archive.Reader) {
	v.StructType = readIdent(r)
	if r.ObjectVersion() >= version.StructGUIDInPropertyTag {
		v.StructGUID = r.ReadGUID()
	}
}

func (v *StructValue) writeTag(w archive.Writer) {
	writeIdent(w, v.StructType)
	if w.ObjectVersion() >= version.StructGUIDInPropertyTag {
		w.WriteGUID(v.StructGUID)
	}
}

func (v *StructValue) read(r *archive.Reader, f *frame) {
	if n, ok := newNative(v.StructType.Name); ok {
		n.readNative(r)
		v.Native = n
		return
	}
	if f.mode == modeUnversioned {
		v.Properties = f.d.readUnversioned(r, v.StructType.Name)
	} else {
		v.Properties = f.d.readTagged(r, v.StructType.Name)
	}
}

func (v *StructValue) write(w archive.Writer, _ *frame) {
	if v.Native != nil {
		v.Native.writeNative(w)
		return
	}
	v.Properties.write(w)
}

// Native is a struct with a fixed binary layout.
type Native interface {
	readNative(r *archive.Reader)
	writeNative(w archive.Writer)
}

func newNative(structType string) (Native, bool) {
	switch structType {
	case "Vector":
		return &Vector{}, true
	case "Vector2D":
		return &Vector2D{}, true
	case "Vector4":
		return &Vector4{}, true
	case "Rotator":
		return &Rotator{}, true
	case "Quat":
		return &Quat{}, true
	case "LinearColor":
		return &LinearColor{}, true
	case "Color":
		return &Color{}, true
	case "IntPoint":
		return &IntPoint{}, true
	case "IntVector":
		return &IntVector{}, true
	case "Guid":
		return &GuidStruct{}, true
	case "DateTime":
		return &DateTime{}, true
	case "Timespan":
		return &Timespan{}, true
	case "FrameNumber":
		return &FrameNumber{}, true
	case "Box":
		return &Box{}, true
	case "SoftObjectPath", "SoftClassPath":
		return &SoftPath{}, true
	case "GameplayTagContainer":
		return &GameplayTagContainer{}, true
	default:
		return nil, false
	}
}

// Real components are doubles from large world coordinates on.
func doubleReals(c archive.Context) bool {
	return c.ObjectVersionUE5() >= version.UE5LargeWorldCoordinates
}

func readReal(r *archive.Reader) float64 {
	if doubleReals(r) {
		return r.ReadFloat64()
	}
	return float64(r.ReadFloat32())
}

func writeReal(w archive.Writer, v float64) {
	if doubleReals(w) {
		w.WriteFloat64(v)
		return
	}
	w.WriteFloat32(float32(v))
}

type Vector struct {
	X, Y, Z float64
}

func (v *Vector) readNative(r *archive.Reader) {
	v.X, v.Y, v.Z = readReal(r), readReal(r), readReal(r)
}

func (v *Vector) writeNative(w archive.Writer) {
	writeReal(w, v.X)
	writeReal(w, v.Y)
	writeReal(w, v.Z)
}

type Vector2D struct {
	X, Y float64
}

func (v *Vector2D) readNative(r *archive.Reader) {
	v.X, v.Y = readReal(r), readReal(r)
}

func (v *Vector2D) writeNative(w archive.Writer) {
	writeReal(w, v.X)
	writeReal(w, v.Y)
}

type Vector4 struct {
	X, Y, Z, W float64
}

func (v *Vector4) readNative(r *archive.Reader) {
	v.X, v.Y, v.Z, v.W = readReal(r), readReal(r), readReal(r), readReal(r)
}

func (v *Vector4) writeNative(w archive.Writer) {
	writeReal(w, v.X)
	writeReal(w, v.Y)
	writeReal(w, v.Z)
	writeReal(w, v.W)
}

type Rotator struct {
	Pitch, Yaw, Roll float64
}

func (v *Rotator) readNative(r *archive.Reader) {
	v.Pitch, v.Yaw, v.Roll = readReal(r), readReal(r), readReal(r)
}

func (v *Rotator) writeNative(w archive.Writer) {
	writeReal(w, v.Pitch)
	writeReal(w, v.Yaw)
	writeReal(w, v.Roll)
}

type Quat struct {
	X, Y, Z, W float64
}

func (v *Quat) readNative(r *archive.Reader) {
	v.X, v.Y, v.Z, v.W = readReal(r), readReal(r), readReal(r), readReal(r)
}

func (v *Quat) writeNative(w archive.Writer) {
	writeReal(w, v.X)
	writeReal(w, v.Y)
	writeReal(w, v.Z)
	writeReal(w, v.W)
}

// LinearColor components are always single precision.
type LinearColor struct {
	R, G, B, A float32
}

func (v *LinearColor) readNative(r *archive.Reader) {
	v.R, v.G, v.B, v.A = r.ReadFloat32(), r.ReadFloat32(), r.ReadFloat32(), r.ReadFloat32()
}

func (v *LinearColor) writeNative(w archive.Writer) {
	w.WriteFloat32(v.R)
	w.WriteFloat32(v.G)
	w.WriteFloat32(v.B)
	w.WriteFloat32(v.A)
}

// Color is stored in BGRA order.
type Color struct {
	B, G, R, A uint8
}

func (v *Color) readNative(r *archive.Reader) {
	v.B, v.G, v.R, v.A = r.ReadUint8(), r.ReadUint8(), r.ReadUint8(), r.ReadUint8()
}

func (v *Color) writeNative(w archive.Writer) {
	w.WriteUint8(v.B)
	w.WriteUint8(v.G)
	w.WriteUint8(v.R)
	w.WriteUint8(v.A)
}

type IntPoint struct {
	X, Y int32
}

func (v *IntPoint) readNative(r *archive.Reader) {
	v.X, v.Y = r.ReadInt32(), r.ReadInt32()
}

func (v *IntPoint) writeNative(w archive.Writer) {
	w.WriteInt32(v.X)
	w.WriteInt32(v.Y)
}

type IntVector struct {
	X, Y, Z int32
}

func (v *IntVector) readNative(r *archive.Reader) {
	v.X, v.Y, v.Z = r.ReadInt32(), r.ReadInt32(), r.ReadInt32()
}

func (v *IntVector) writeNative(w archive.Writer) {
	w.WriteInt32(v.X)
	w.WriteInt32(v.Y)
	w.WriteInt32(v.Z)
}

type GuidStruct struct {
	Value types.GUID
}

func (v *GuidStruct) readNative(r *archive.Reader) { v.Value = r.ReadGUID() }
func (v *GuidStruct) writeNative(w archive.Writer) { w.WriteGUID(v.Value) }

// DateTime counts 100ns ticks since 0001-01-01.
type DateTime struct {
	Ticks int64
}

func (v *DateTime) readNative(r *archive.Reader) { v.Ticks = r.ReadInt64() }
func (v *DateTime) writeNative(w archive.Writer) { w.WriteInt64(v.Ticks) }

type Timespan struct {
	Ticks int64
}

func (v *Timespan) readNative(r *archive.Reader) { v.Ticks = r.ReadInt64() }
func (v *Timespan) writeNative(w archive.Writer) { w.WriteInt64(v.Ticks) }

type FrameNumber struct {
	Value int32
}

func (v *FrameNumber) readNative(r *archive.Reader) { v.Value = r.ReadInt32() }
func (v *FrameNumber) writeNative(w archive.Writer) { w.WriteInt32(v.Value) }

type Box struct {
	Min, Max Vector
	IsValid  uint8
}

func (v *Box) readNative(r *archive.Reader) {
	v.Min.readNative(r)
	v.Max.readNative(r)
	v.IsValid = r.ReadUint8()
}

func (v *Box) writeNative(w archive.Writer) {
	v.Min.writeNative(w)
	v.Max.writeNative(w)
	w.WriteUint8(v.IsValid)
}

// SoftPath is the native form of SoftObjectPath and SoftClassPath.
type SoftPath struct {
	Value types.SoftObjectPath
}

func (v *SoftPath) readNative(r *archive.Reader) { v.Value = archive.ReadSoftObjectPath(r) }
func (v *SoftPath) writeNative(w archive.Writer) { archive.WriteSoftObjectPath(w, v.Value) }

type GameplayTagContainer struct {
	Tags []types.FName
}

func (v *GameplayTagContainer) readNative(r *archive.Reader) {
	for range r.ReadCount(8) {
		v.Tags = append(v.Tags, r.ReadFName())
	}
}

func (v *GameplayTagContainer) writeNative(w archive.Writer) {
	w.WriteInt32(int32(len(v.Tags))) //nolint:gosec // bounded by the decoded count
	for _, t := range v.Tags {
		w.WriteFName(t)
	}
}
