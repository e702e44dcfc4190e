package exports

import (
	"math"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// Object flags consulted by payload layouts.
const (
	FlagClassDefaultObject uint32 = 0x10
)

// Export is a decoded export of any variant.
type Export interface {
	// Base returns the export table entry. It is never nil.
	Base() *BaseExport
	// Normal returns the property-bearing part of the export, or nil for
	// variants that have none.
	Normal() *NormalExport
	// Write serializes the payload, excluding Extras. Failures are
	// recorded on w.
	Write(w archive.Writer)
}

// Structured is implemented by the variants built on StructExport.
type Structured interface {
	Export
	Struct() *StructExport
}

// BaseExport is one export table entry.
type BaseExport struct {
	ClassIndex    types.PackageIndex
	SuperIndex    types.PackageIndex
	TemplateIndex types.PackageIndex
	OuterIndex    types.PackageIndex
	ObjectName    types.FName
	ObjectFlags   uint32

	// SerialSize and SerialOffset locate the payload. Encoding recomputes
	// both.
	SerialSize   int64
	SerialOffset int64

	ForcedExport                 bool
	NotForClient                 bool
	NotForServer                 bool
	PackageGUID                  types.GUID
	IsInheritedInstance          bool
	PackageFlags                 uint32
	NotAlwaysLoadedForEditorGame bool
	IsAsset                      bool
	GeneratePublicHash           bool

	FirstExportDependency                        int32
	SerializationBeforeSerializationDependencies int32
	CreateBeforeSerializationDependencies        int32
	SerializationBeforeCreateDependencies        int32
	CreateBeforeCreateDependencies               int32

	// Extras are the payload bytes after the variant's last field.
	Extras []byte
}

// Base implements Export.
func (b *BaseExport) Base() *BaseExport { return b }

// IsClassDefaultObject reports whether the export is a class default object.
func (b *BaseExport) IsClassDefaultObject() bool {
	return b.ObjectFlags&FlagClassDefaultObject != 0
}

// ReadEntry reads one export table entry.
func ReadEntry(r *archive.Reader) BaseExport {
	ue4, ue5 := r.ObjectVersion(), r.ObjectVersionUE5()

	var b BaseExport
	b.ClassIndex = r.ReadPackageIndex()
	b.SuperIndex = r.ReadPackageIndex()
	if ue4 >= version.TemplateIndexInCookedExports {
		b.TemplateIndex = r.ReadPackageIndex()
	}
	b.OuterIndex = r.ReadPackageIndex()
	b.ObjectName = r.ReadFName()
	b.ObjectFlags = r.ReadUint32()
	if ue4 < version.Export64BitSerialSizes {
		b.SerialSize = int64(r.ReadInt32())
		b.SerialOffset = int64(r.ReadInt32())
	} else {
		b.SerialSize = r.ReadInt64()
		b.SerialOffset = r.ReadInt64()
	}
	b.ForcedExport = r.ReadBool32()
	b.NotForClient = r.ReadBool32()
	b.NotForServer = r.ReadBool32()
	if ue5 < version.UE5RemoveObjectExportPackageGUID {
		b.PackageGUID = r.ReadGUID()
	}
	if ue5 >= version.UE5TrackObjectExportIsInherited {
		b.IsInheritedInstance = r.ReadBool32()
	}
	b.PackageFlags = r.ReadUint32()
	if ue4 >= version.LoadForEditorGame {
		b.NotAlwaysLoadedForEditorGame = r.ReadBool32()
	}
	if ue4 >= version.CookedAssetsInEditorSupport {
		b.IsAsset = r.ReadBool32()
	}
	if ue5 >= version.UE5OptionalResources {
		b.GeneratePublicHash = r.ReadBool32()
	}
	if ue4 >= version.PreloadDependenciesInCookedExports {
		b.FirstExportDependency = r.ReadInt32()
		b.SerializationBeforeSerializationDependencies = r.ReadInt32()
		b.CreateBeforeSerializationDependencies = r.ReadInt32()
		b.SerializationBeforeCreateDependencies = r.ReadInt32()
		b.CreateBeforeCreateDependencies = r.ReadInt32()
	}
	if b.SerialSize < 0 || b.SerialOffset < 0 {
		r.Fail(codecerr.Structural(r.Position(), "export %s has serial size %d at offset %d",
			r.NameMap().String(b.ObjectName), b.SerialSize, b.SerialOffset))
	}
	return b
}

// WriteEntry writes b as an export table entry.
func (b *BaseExport) WriteEntry(w archive.Writer) {
	ue4, ue5 := w.ObjectVersion(), w.ObjectVersionUE5()

	w.WritePackageIndex(b.ClassIndex)
	w.WritePackageIndex(b.SuperIndex)
	if ue4 >= version.TemplateIndexInCookedExports {
		w.WritePackageIndex(b.TemplateIndex)
	}
	w.WritePackageIndex(b.OuterIndex)
	w.WriteFName(b.ObjectName)
	w.WriteUint32(b.ObjectFlags)
	if ue4 < version.Export64BitSerialSizes {
		if b.SerialSize > math.MaxInt32 || b.SerialOffset > math.MaxInt32 {
			w.Fail(codecerr.SizeMismatch("32-bit export serial fields", math.MaxInt32, max(b.SerialSize, b.SerialOffset)))
			return
		}
		w.WriteInt32(int32(b.SerialSize))
		w.WriteInt32(int32(b.SerialOffset))
	} else {
		w.WriteInt64(b.SerialSize)
		w.WriteInt64(b.SerialOffset)
	}
	w.WriteBool32(b.ForcedExport)
	w.WriteBool32(b.NotForClient)
	w.WriteBool32(b.NotForServer)
	if ue5 < version.UE5RemoveObjectExportPackageGUID {
		w.WriteGUID(b.PackageGUID)
	}
	if ue5 >= version.UE5TrackObjectExportIsInherited {
		w.WriteBool32(b.IsInheritedInstance)
	}
	w.WriteUint32(b.PackageFlags)
	if ue4 >= version.LoadForEditorGame {
		w.WriteBool32(b.NotAlwaysLoadedForEditorGame)
	}
	if ue4 >= version.CookedAssetsInEditorSupport {
		w.WriteBool32(b.IsAsset)
	}
	if ue5 >= version.UE5OptionalResources {
		w.WriteBool32(b.GeneratePublicHash)
	}
	if ue4 >= version.PreloadDependenciesInCookedExports {
		w.WriteInt32(b.FirstExportDependency)
		w.WriteInt32(b.SerializationBeforeSerializationDependencies)
		w.WriteInt32(b.CreateBeforeSerializationDependencies)
		w.WriteInt32(b.SerializationBeforeCreateDependencies)
		w.WriteInt32(b.CreateBeforeCreateDependencies)
	}
}

// UnknownExport is an export whose payload was not read.
type UnknownExport struct {
	BaseExport
}

// Normal implements Export.
func (*UnknownExport) Normal() *NormalExport { return nil }

// Write implements Export. An unknown export has no payload to write.
func (*UnknownExport) Write(archive.Writer) {}

// RawExport keeps its whole payload verbatim.
type RawExport struct {
	BaseExport
	Data []byte
}

// Normal implements Export.
func (*RawExport) Normal() *NormalExport { return nil }

// Write implements Export.
func (e *RawExport) Write(w archive.Writer) { w.WriteBytes(e.Data) }
