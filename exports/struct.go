package exports

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// StructExport is the payload shared by structs, functions and classes.
type StructExport struct {
	NormalExport
	Field       Field
	SuperStruct types.PackageIndex
	// Children lists the child fields. Packages that still chain fields
	// store only the first, so Children then holds exactly one index.
	Children []types.PackageIndex
	// ChildProperties are only serialized by packages with FProperties.
	ChildProperties []*FProperty

	// BytecodeSize is the in-memory size of the script; Bytecode holds the
	// serialized form.
	BytecodeSize int32
	Bytecode     []byte
}

// Struct implements Structured.
func (e *StructExport) Struct() *StructExport { return e }

func hasChildProperties(c archive.Context) bool {
	v, ok := c.CustomVersion(version.CoreObjectVersion)
	return ok && v >= version.CoreFProperties
}

func (d *Decoder) readStruct(r *archive.Reader, b BaseExport, class string) (StructExport, error) {
	n, err := d.readNormal(r, b, class)
	if err != nil {
		return StructExport{}, err
	}
	e := StructExport{NormalExport: n}
	e.Field = readField(r)
	e.SuperStruct = r.ReadPackageIndex()
	if hasFieldNext(r) {
		e.Children = []types.PackageIndex{r.ReadPackageIndex()}
	} else {
		count := r.ReadCount(4)
		for range count {
			e.Children = append(e.Children, r.ReadPackageIndex())
		}
	}
	if hasChildProperties(r) {
		count := r.ReadCount(8)
		for range count {
			p := readFProperty(r, 0)
			if p == nil {
				break
			}
			e.ChildProperties = append(e.ChildProperties, p)
		}
	}
	e.BytecodeSize = r.ReadInt32()
	at := r.Position()
	storage := r.ReadInt32()
	if storage < 0 {
		r.Fail(codecerr.Structural(at, "negative script storage size %d", storage))
	}
	e.Bytecode = r.ReadBytes(int64(max(storage, 0)))
	return e, r.Err()
}

func (e *StructExport) Write(w archive.Writer) {
	e.NormalExport.Write(w)
	e.writeStruct(w)
}

func (e *StructExport) writeStruct(w archive.Writer) {
	e.Field.write(w)
	w.WritePackageIndex(e.SuperStruct)
	if hasFieldNext(w) {
		var first types.PackageIndex
		if len(e.Children) > 0 {
			first = e.Children[0]
		}
		w.WritePackageIndex(first)
	} else {
		w.WriteInt32(int32(len(e.Children))) //nolint:gosec // bounded by decode
		for _, c := range e.Children {
			w.WritePackageIndex(c)
		}
	}
	if hasChildProperties(w) {
		w.WriteInt32(int32(len(e.ChildProperties))) //nolint:gosec // bounded by decode
		for _, p := range e.ChildProperties {
			p.write(w)
		}
	}
	w.WriteInt32(e.BytecodeSize)
	w.WriteInt32(int32(len(e.Bytecode))) //nolint:gosec // bounded by decode
	w.WriteBytes(e.Bytecode)
}

// ScriptStructExport is a native struct with its struct flags.
type ScriptStructExport struct {
	StructExport
	StructFlags uint32
}

func (e *ScriptStructExport) Write(w archive.Writer) {
	e.StructExport.Write(w)
	w.WriteUint32(e.StructFlags)
}

// FunctionFlagNet marks replicated functions, which carry a replication
// offset.
const FunctionFlagNet uint32 = 0x40

// FunctionExport is a UFunction.
type FunctionExport struct {
	StructExport
	FunctionFlags uint32
	RepOffset     uint16

	// The event graph fields are only serialized by packages that inline
	// event graph calls.
	EventGraphFunction   types.PackageIndex
	EventGraphCallOffset int32
}

func hasEventGraph(c archive.Context) bool {
	return c.ObjectVersion() >= version.SerializeBlueprintEventGraphCalls
}

func (d *Decoder) readFunction(r *archive.Reader, b BaseExport, class string) (*FunctionExport, error) {
	s, err := d.readStruct(r, b, class)
	if err != nil {
		return nil, err
	}
	e := &FunctionExport{StructExport: s}
	e.FunctionFlags = r.ReadUint32()
	if e.FunctionFlags&FunctionFlagNet != 0 {
		e.RepOffset = r.ReadUint16()
	}
	if hasEventGraph(r) {
		e.EventGraphFunction = r.ReadPackageIndex()
		e.EventGraphCallOffset = r.ReadInt32()
	}
	return e, r.Err()
}

func (e *FunctionExport) Write(w archive.Writer) {
	e.StructExport.Write(w)
	w.WriteUint32(e.FunctionFlags)
	if e.FunctionFlags&FunctionFlagNet != 0 {
		w.WriteUint16(e.RepOffset)
	}
	if hasEventGraph(w) {
		w.WritePackageIndex(e.EventGraphFunction)
		w.WriteInt32(e.EventGraphCallOffset)
	}
}

// FuncMapEntry maps a function name to its export.
type FuncMapEntry struct {
	Name     types.FName
	Function types.PackageIndex
}

// Interface is an interface implemented by a class.
type Interface struct {
	Class           types.PackageIndex
	PointerOffset   int32
	ImplementedByK2 bool
}

// ClassExport is a UClass, usually a blueprint generated class.
type ClassExport struct {
	StructExport
	FuncMap          []FuncMapEntry
	ClassFlags       uint32
	ClassWithin      types.PackageIndex
	ClassConfigName  types.FName
	ClassGeneratedBy types.PackageIndex
	Interfaces       []Interface

	DeprecatedForceScriptOrder bool
	// Terminator is the name written after the interfaces, normally None.
	Terminator types.FName
	// Cooked is only serialized by packages that flag cooked classes.
	Cooked             bool
	ClassDefaultObject types.PackageIndex
}

func interfacesAfterLink(c archive.Context) bool {
	return c.ObjectVersion() >= version.UClassSerializeInterfacesAfterLink
}

func (d *Decoder) readClass(r *archive.Reader, b BaseExport, class string) (*ClassExport, error) {
	s, err := d.readStruct(r, b, class)
	if err != nil {
		return nil, err
	}
	e := &ClassExport{StructExport: s}
	n := r.ReadCount(12)
	for range n {
		e.FuncMap = append(e.FuncMap, FuncMapEntry{Name: r.ReadFName(), Function: r.ReadPackageIndex()})
	}
	e.ClassFlags = r.ReadUint32()
	e.ClassWithin = r.ReadPackageIndex()
	e.ClassConfigName = r.ReadFName()
	if !interfacesAfterLink(r) {
		e.Interfaces = readInterfaces(r)
	}
	e.ClassGeneratedBy = r.ReadPackageIndex()
	if interfacesAfterLink(r) {
		e.Interfaces = readInterfaces(r)
	}
	e.DeprecatedForceScriptOrder = r.ReadBool32()
	e.Terminator = r.ReadFName()
	if r.ObjectVersion() >= version.AddCookedToUClass {
		e.Cooked = r.ReadBool32()
	}
	e.ClassDefaultObject = r.ReadPackageIndex()
	return e, r.Err()
}

func readInterfaces(r *archive.Reader) []Interface {
	var out []Interface
	n := r.ReadCount(12)
	for range n {
		out = append(out, Interface{
			Class:           r.ReadPackageIndex(),
			PointerOffset:   r.ReadInt32(),
			ImplementedByK2: r.ReadBool32(),
		})
	}
	return out
}

func writeInterfaces(w archive.Writer, list []Interface) {
	w.WriteInt32(int32(len(list))) //nolint:gosec // bounded by decode
	for _, i := range list {
		w.WritePackageIndex(i.Class)
		w.WriteInt32(i.PointerOffset)
		w.WriteBool32(i.ImplementedByK2)
	}
}

func (e *ClassExport) Write(w archive.Writer) {
	e.StructExport.Write(w)
	w.WriteInt32(int32(len(e.FuncMap))) //nolint:gosec // bounded by decode
	for _, f := range e.FuncMap {
		w.WriteFName(f.Name)
		w.WritePackageIndex(f.Function)
	}
	w.WriteUint32(e.ClassFlags)
	w.WritePackageIndex(e.ClassWithin)
	w.WriteFName(e.ClassConfigName)
	if !interfacesAfterLink(w) {
		writeInterfaces(w, e.Interfaces)
	}
	w.WritePackageIndex(e.ClassGeneratedBy)
	if interfacesAfterLink(w) {
		writeInterfaces(w, e.Interfaces)
	}
	w.WriteBool32(e.DeprecatedForceScriptOrder)
	w.WriteFName(e.Terminator)
	if w.ObjectVersion() >= version.AddCookedToUClass {
		w.WriteBool32(e.Cooked)
	}
	w.WritePackageIndex(e.ClassDefaultObject)
}
