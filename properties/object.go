package properties

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/types"
)

// ObjectValue is a reference property stored as a package index: object,
// weak object, interface and class properties.
type ObjectValue struct {
	noTag
	Kind  string
	Value types.PackageIndex
}

func (v *ObjectValue) Type() string {
	if v.Kind == "" {
		return "ObjectProperty"
	}
	return v.Kind
}

func (v *ObjectValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadPackageIndex() }
func (v *ObjectValue) write(w archive.Writer, _ *frame) { w.WritePackageIndex(v.Value) }

// LazyObjectValue references an object by its persistent GUID.
type LazyObjectValue struct {
	noTag
	Value types.GUID
}

func (*LazyObjectValue) Type() string                       { return "LazyObjectProperty" }
func (v *LazyObjectValue) read(r *archive.Reader, _ *frame) { v.Value = r.ReadGUID() }
func (v *LazyObjectValue) write(w archive.Writer, _ *frame) { w.WriteGUID(v.Value) }

// SoftObjectValue references an asset by path: soft object, soft class and
// the legacy asset object properties.
type SoftObjectValue struct {
	noTag
	Kind  string
	Value types.SoftObjectPath
}

func (v *SoftObjectValue) Type() string {
	if v.Kind == "" {
		return "SoftObjectProperty"
	}
	return v.Kind
}

func (v *SoftObjectValue) read(r *archive.Reader, _ *frame) { v.Value = archive.ReadSoftObjectPath(r) }
func (v *SoftObjectValue) write(w archive.Writer, _ *frame) { archive.WriteSoftObjectPath(w, v.Value) }

// Delegate binds a function name to an object.
type Delegate struct {
	Object   types.PackageIndex
	Function types.FName
}

func readDelegate(r *archive.Reader) Delegate {
	return Delegate{Object: r.ReadPackageIndex(), Function: r.ReadFName()}
}

func writeDelegate(w archive.Writer, d Delegate) {
	w.WritePackageIndex(d.Object)
	w.WriteFName(d.Function)
}

type DelegateValue struct {
	noTag
	Value Delegate
}

func (*DelegateValue) Type() string                       { return "DelegateProperty" }
func (v *DelegateValue) read(r *archive.Reader, _ *frame) { v.Value = readDelegate(r) }
func (v *DelegateValue) write(w archive.Writer, _ *frame) { writeDelegate(w, v.Value) }

// MulticastDelegateValue is an invocation list. Kind distinguishes the
// inline and sparse variants, which share the layout.
type MulticastDelegateValue struct {
	noTag
	Kind      string
	Delegates []Delegate
}

func (v *MulticastDelegateValue) Type() string {
	if v.Kind == "" {
		return "MulticastDelegateProperty"
	}
	return v.Kind
}

func (v *MulticastDelegateValue) read(r *archive.Reader, _ *frame) {
	for range r.ReadCount(12) {
		v.Delegates = append(v.Delegates, readDelegate(r))
	}
}

func (v *MulticastDelegateValue) write(w archive.Writer, _ *frame) {
	w.WriteInt32(int32(len(v.Delegates))) //nolint:gosec // bounded by the decoded count
	for _, d := range v.Delegates {
		writeDelegate(w, d)
	}
}

// FieldPathValue addresses a field by its name chain within an owner.
type FieldPathValue struct {
	noTag
	Path  []types.FName
	Owner types.PackageIndex
}

func (*FieldPathValue) Type() string { return "FieldPathProperty" }

func (v *FieldPathValue) read(r *archive.Reader, _ *frame) {
	for range r.ReadCount(8) {
		v.Path = append(v.Path, r.ReadFName())
	}
	v.Owner = r.ReadPackageIndex()
}

func (v *FieldPathValue) write(w archive.Writer, _ *frame) {
	w.WriteInt32(int32(len(v.Path))) //nolint:gosec // bounded by the decoded count
	for _, n := range v.Path {
		w.WriteFName(n)
	}
	w.WritePackageIndex(v.Owner)
}
