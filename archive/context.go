package archive

import (
	"github.com/meigma/uasset/names"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

// Context exposes the package-wide state shared by readers and writers.
type Context interface {
	EngineVersion() version.EngineVersion
	ObjectVersion() version.ObjectVersion
	ObjectVersionUE5() version.ObjectVersionUE5
	// CustomVersion returns the version recorded for key, or false when
	// the package does not carry it.
	CustomVersion(key types.GUID) (int32, bool)
	CustomVersions() *version.CustomVersions
	NameMap() *names.Map
	Import(index types.PackageIndex) (types.Import, bool)
	// ClassName resolves the object name of an import or export without
	// decoding any export payload.
	ClassName(index types.PackageIndex) (string, bool)
	// Schema returns the unversioned property schema, or nil.
	Schema() unversioned.Schema
	UnversionedProperties() bool
	FilterEditorOnly() bool
	Overrides() *Overrides
}

// Overrides name the struct types of container elements whose tags do not
// carry them. Keys are property names.
type Overrides struct {
	MapKey      map[string]string
	MapValue    map[string]string
	ArrayStruct map[string]string
}

// MapKeyStruct returns the struct type of the keys of map property name.
func (o *Overrides) MapKeyStruct(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	s, ok := o.MapKey[name]
	return s, ok
}

// MapValueStruct returns the struct type of the values of map property name.
func (o *Overrides) MapValueStruct(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	s, ok := o.MapValue[name]
	return s, ok
}

// ArrayStructType returns the struct type of the elements of array or set
// property name.
func (o *Overrides) ArrayStructType(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	s, ok := o.ArrayStruct[name]
	return s, ok
}

// Static is a fixed Context for code that serializes outside a package,
// such as tests and tools.
type Static struct {
	Engine      version.EngineVersion
	UE4         version.ObjectVersion
	UE5         version.ObjectVersionUE5
	Custom      *version.CustomVersions
	Names       *names.Map
	Imports     []types.Import
	ExportNames []string
	Mappings    unversioned.Schema
	Unversioned bool
	EditorOnly  bool
	Override    *Overrides
}

var _ Context = (*Static)(nil)

// NewStatic returns a Static context with an empty name table.
func NewStatic(ue4 version.ObjectVersion) *Static {
	return &Static{UE4: ue4, Names: names.NewMap(), Custom: version.NewCustomVersions()}
}

func (s *Static) EngineVersion() version.EngineVersion       { return s.Engine }
func (s *Static) ObjectVersion() version.ObjectVersion       { return s.UE4 }
func (s *Static) ObjectVersionUE5() version.ObjectVersionUE5 { return s.UE5 }
func (s *Static) CustomVersions() *version.CustomVersions    { return s.Custom }
func (s *Static) NameMap() *names.Map                        { return s.Names }
func (s *Static) Schema() unversioned.Schema                 { return s.Mappings }
func (s *Static) UnversionedProperties() bool                { return s.Unversioned }
func (s *Static) FilterEditorOnly() bool                     { return s.EditorOnly }
func (s *Static) Overrides() *Overrides                      { return s.Override }
func (s *Static) CustomVersion(key types.GUID) (int32, bool) { return s.Custom.Get(key) }

// Import implements Context.
func (s *Static) Import(index types.PackageIndex) (types.Import, bool) {
	if !index.IsImport() || index.Import() >= len(s.Imports) {
		return types.Import{}, false
	}
	return s.Imports[index.Import()], true
}

// ClassName implements Context.
func (s *Static) ClassName(index types.PackageIndex) (string, bool) {
	switch {
	case index.IsImport():
		imp, ok := s.Import(index)
		if !ok {
			return "", false
		}
		v, err := s.Names.Resolve(imp.ObjectName)
		return v, err == nil
	case index.IsExport():
		if index.Export() >= len(s.ExportNames) {
			return "", false
		}
		return s.ExportNames[index.Export()], true
	default:
		return "", false
	}
}
