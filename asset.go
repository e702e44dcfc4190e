package uasset

import (
	"fmt"
	"log/slog"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/names"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

// State is the decode progress of an Asset.
type State int

const (
	StateEmpty State = iota
	StateHeaderRead
	StateNamesRead
	StateImportsRead
	StateExportsRead
	StatePayloadsRead
	StateDecoded
)

var stateNames = [...]string{
	StateEmpty:        "empty",
	StateHeaderRead:   "header_read",
	StateNamesRead:    "names_read",
	StateImportsRead:  "imports_read",
	StateExportsRead:  "exports_read",
	StatePayloadsRead: "payloads_read",
	StateDecoded:      "decoded",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Asset is a decoded package. It is not safe for concurrent use.
//
// Asset implements archive.Context, so its readers and writers see the
// package's effective versions, names and imports.
type Asset struct {
	cfg     config
	state   State
	summary *Summary
	custom  *version.CustomVersions

	names           *names.Map
	softObjectPaths []types.SoftObjectPath
	imports         []types.Import
	exports         []exports.Export
	depends         [][]types.PackageIndex
	softPackageRefs []types.FName
	assetRegistry   []byte
	preload         []types.PackageIndex

	// trailer holds the bytes after the last export payload. Offsets that
	// point into it are kept relative to its start.
	trailer       []byte
	bulkDataRel   int64
	payloadTOCRel int64

	// built marks assets constructed by New rather than decoded.
	built bool
}

var _ archive.Context = (*Asset)(nil)

// New returns an empty, encodable asset saved by the configured engine
// release, or the latest known one.
func New(opts ...Option) *Asset {
	cfg := newConfig(opts)
	if !cfg.engine.Valid() {
		cfg.engine = version.LatestEngineVersion
	}
	s := &Summary{
		LegacyFileVersion:      -7,
		FileVersionUE4:         cfg.engine.ObjectVersion(),
		FileVersionUE5:         cfg.engine.ObjectVersionUE5(),
		CustomVersions:         version.DefaultCustomVersions(cfg.engine),
		FolderName:             types.NewFString("None"),
		PackageFlags:           PackageFlagFilterEditorOnly,
		GUID:                   types.NewGUID(),
		Generations:            []Generation{{}},
		PreloadDependencyCount: -1,
		PayloadTOCOffset:       -1,
	}
	if s.FileVersionUE5 != version.UE5Unversioned {
		s.LegacyFileVersion = LegacyFileVersionNewest
	}
	_ = s.setVersions(cfg.engine)
	return &Asset{
		cfg:     cfg,
		state:   StateDecoded,
		summary: s,
		custom:  s.CustomVersions,
		names:   names.NewMap(),
		// A cooked package without registry objects stores a zero count.
		assetRegistry: []byte{0, 0, 0, 0},
		payloadTOCRel: -1,
		built:         true,
	}
}

func newAsset(opts []Option) *Asset {
	return &Asset{cfg: newConfig(opts), names: names.NewMap()}
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Asset) log() *slog.Logger {
	if a.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.cfg.logger
}

// advance moves the state machine one step. Each state is entered once;
// anything else is a programming error.
func (a *Asset) advance(next State) {
	if next != a.state+1 {
		panic(fmt.Sprintf("uasset: cannot enter state %s from %s", next, a.state))
	}
	a.state = next
	a.log().Debug("decode state", slog.String("state", next.String()))
}

// State returns the decode progress.
func (a *Asset) State() State { return a.state }

// Summary returns the package summary.
func (a *Asset) Summary() *Summary { return a.summary }

// EngineVersion implements archive.Context.
func (a *Asset) EngineVersion() version.EngineVersion { return a.cfg.engine }

// ObjectVersion implements archive.Context. Unversioned packages report
// the configured engine's version.
func (a *Asset) ObjectVersion() version.ObjectVersion {
	if a.summary == nil {
		return version.Unversioned
	}
	return a.summary.ue4
}

// ObjectVersionUE5 implements archive.Context.
func (a *Asset) ObjectVersionUE5() version.ObjectVersionUE5 {
	if a.summary == nil {
		return version.UE5Unversioned
	}
	return a.summary.ue5
}

// CustomVersions returns the effective custom versions: those recorded in
// the header, or the engine defaults for unversioned packages.
func (a *Asset) CustomVersions() *version.CustomVersions { return a.custom }

// CustomVersion implements archive.Context.
func (a *Asset) CustomVersion(key types.GUID) (int32, bool) { return a.custom.Get(key) }

// NameMap implements archive.Context.
func (a *Asset) NameMap() *names.Map { return a.names }

// Schema implements archive.Context.
func (a *Asset) Schema() unversioned.Schema { return a.cfg.schema }

// Overrides implements archive.Context.
func (a *Asset) Overrides() *archive.Overrides { return &a.cfg.overrides }

// UnversionedProperties implements archive.Context.
func (a *Asset) UnversionedProperties() bool {
	return a.summary != nil && a.summary.PackageFlags&PackageFlagUnversionedProperties != 0
}

// FilterEditorOnly implements archive.Context.
func (a *Asset) FilterEditorOnly() bool {
	return a.summary != nil && a.summary.filterEditorOnly()
}

// Import implements archive.Context.
func (a *Asset) Import(index types.PackageIndex) (types.Import, bool) {
	if !index.IsImport() || index.Import() >= len(a.imports) {
		return types.Import{}, false
	}
	return a.imports[index.Import()], true
}

// ClassName implements archive.Context. It reads only table entries.
func (a *Asset) ClassName(index types.PackageIndex) (string, bool) {
	var n types.FName
	switch {
	case index.IsImport():
		imp, ok := a.Import(index)
		if !ok {
			return "", false
		}
		n = imp.ObjectName
	case index.IsExport():
		if index.Export() >= len(a.exports) {
			return "", false
		}
		n = a.exports[index.Export()].Base().ObjectName
	default:
		return "", false
	}
	s, err := a.names.Resolve(n)
	return s, err == nil
}

// ResolveName returns the display string of n.
func (a *Asset) ResolveName(n types.FName) (string, error) { return a.names.Resolve(n) }

// Imports returns the import table. The slice must not be modified.
func (a *Asset) Imports() []types.Import { return a.imports }

// Exports returns the exports in table order. The slice must not be
// modified.
func (a *Asset) Exports() []exports.Export { return a.exports }

// Export returns the export at 1-based position i.
func (a *Asset) Export(i int) (exports.Export, bool) {
	if i < 1 || i > len(a.exports) {
		return nil, false
	}
	return a.exports[i-1], true
}

// SoftObjectPaths returns the soft object path list.
func (a *Asset) SoftObjectPaths() []types.SoftObjectPath { return a.softObjectPaths }

// SoftPackageReferences returns the soft package reference list.
func (a *Asset) SoftPackageReferences() []types.FName { return a.softPackageRefs }

// Depends returns the per-export dependency lists, or nil when the
// package has none.
func (a *Asset) Depends() [][]types.PackageIndex { return a.depends }

// PreloadDependencies returns the preload dependency list.
func (a *Asset) PreloadDependencies() []types.PackageIndex { return a.preload }

// Object is what a package index refers to. Exactly one of Import and
// Export is set.
type Object struct {
	Index  types.PackageIndex
	Import *types.Import
	Export exports.Export
}

// Resolve returns the import or export index refers to. The null index and
// indices outside both tables return ErrNotFound.
func (a *Asset) Resolve(index types.PackageIndex) (Object, error) {
	switch {
	case index.IsImport() && index.Import() < len(a.imports):
		return Object{Index: index, Import: &a.imports[index.Import()]}, nil
	case index.IsExport() && index.Export() < len(a.exports):
		return Object{Index: index, Export: a.exports[index.Export()]}, nil
	default:
		return Object{}, fmt.Errorf("%w: package index %d", ErrNotFound, index)
	}
}

// FindExport returns the index of the first export named name.
func (a *Asset) FindExport(name string) (types.PackageIndex, bool) {
	for i, e := range a.exports {
		if s, err := a.names.Resolve(e.Base().ObjectName); err == nil && s == name {
			return types.ExportIndex(i), true
		}
	}
	return 0, false
}

// AddImport appends imp to the import table.
func (a *Asset) AddImport(imp types.Import) types.PackageIndex {
	a.imports = append(a.imports, imp)
	return types.ImportIndex(len(a.imports) - 1)
}

// AddExport appends e to the export table. Its serial fields are assigned
// on encode.
func (a *Asset) AddExport(e exports.Export) types.PackageIndex {
	a.exports = append(a.exports, e)
	if a.depends != nil || a.built {
		a.depends = append(a.depends, nil)
	}
	return types.ExportIndex(len(a.exports) - 1)
}
