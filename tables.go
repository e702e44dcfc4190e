package uasset

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

func nameHashes(c archive.Context) bool {
	return c.ObjectVersion() >= version.NameHashesSerialized
}

func importHasPackageName(c archive.Context) bool {
	return !c.FilterEditorOnly() && c.ObjectVersion() >= version.NonOuterPackageImport
}

func importHasOptional(c archive.Context) bool {
	return c.ObjectVersionUE5() >= version.UE5OptionalResources
}

func readImport(r *archive.Reader) types.Import {
	imp := types.Import{
		ClassPackage: r.ReadFName(),
		ClassName:    r.ReadFName(),
		OuterIndex:   r.ReadPackageIndex(),
		ObjectName:   r.ReadFName(),
	}
	if importHasPackageName(r) {
		imp.PackageName = r.ReadFName()
	}
	if importHasOptional(r) {
		imp.ImportOptional = r.ReadBool32()
	}
	return imp
}

func writeImport(w archive.Writer, imp types.Import) {
	w.WriteFName(imp.ClassPackage)
	w.WriteFName(imp.ClassName)
	w.WritePackageIndex(imp.OuterIndex)
	w.WriteFName(imp.ObjectName)
	if importHasPackageName(w) {
		w.WriteFName(imp.PackageName)
	}
	if importHasOptional(w) {
		w.WriteBool32(imp.ImportOptional)
	}
}

// seek positions r at a table offset. A table with entries must have an
// offset.
func seek(r *archive.Reader, what string, count, offset int32) bool {
	if count == 0 {
		return false
	}
	if offset <= 0 {
		r.Fail(codecerr.Structural(codecerr.NoOffset, "%s table has %d entries at offset %d", what, count, offset))
		return false
	}
	r.SetPosition(int64(offset))
	return r.Err() == nil
}

func (a *Asset) readNames(r *archive.Reader) {
	s := a.summary
	if !seek(r, "name", s.NameCount, s.NameOffset) {
		return
	}
	if err := a.names.ReadAll(r, int(s.NameCount), nameHashes(r)); err != nil {
		r.Fail(err)
	}
}

func (a *Asset) readSoftObjectPaths(r *archive.Reader) {
	s := a.summary
	if !seek(r, "soft object path", s.SoftObjectPathsCount, s.SoftObjectPathsOffset) {
		return
	}
	for range s.SoftObjectPathsCount {
		a.softObjectPaths = append(a.softObjectPaths, archive.ReadSoftObjectPath(r))
		if r.Err() != nil {
			return
		}
	}
}

func (a *Asset) readImports(r *archive.Reader) {
	s := a.summary
	if !seek(r, "import", s.ImportCount, s.ImportOffset) {
		return
	}
	for range s.ImportCount {
		imp := readImport(r)
		if r.Err() != nil {
			return
		}
		a.imports = append(a.imports, imp)
	}
}

func (a *Asset) readExportTable(r *archive.Reader) []exports.BaseExport {
	s := a.summary
	if !seek(r, "export", s.ExportCount, s.ExportOffset) {
		return nil
	}
	bases := make([]exports.BaseExport, 0, min(int(s.ExportCount), 1<<16))
	for range s.ExportCount {
		b := exports.ReadEntry(r)
		if r.Err() != nil {
			return nil
		}
		bases = append(bases, b)
	}
	return bases
}

func (a *Asset) readDepends(r *archive.Reader) {
	s := a.summary
	if s.DependsOffset <= 0 {
		return
	}
	r.SetPosition(int64(s.DependsOffset))
	a.depends = make([][]types.PackageIndex, len(a.exports))
	for i := range a.exports {
		n := r.ReadCount(4)
		for range n {
			a.depends[i] = append(a.depends[i], r.ReadPackageIndex())
		}
		if r.Err() != nil {
			return
		}
	}
}

func (a *Asset) readSoftPackageRefs(r *archive.Reader) {
	s := a.summary
	if !seek(r, "soft package reference", s.SoftPackageRefsCount, s.SoftPackageRefsOffset) {
		return
	}
	for range s.SoftPackageRefsCount {
		a.softPackageRefs = append(a.softPackageRefs, r.ReadFName())
		if r.Err() != nil {
			return
		}
	}
}

// readAssetRegistry captures the asset registry data verbatim. It runs up
// to the preload dependencies, or to the end of the header.
func (a *Asset) readAssetRegistry(r *archive.Reader) {
	s := a.summary
	if s.AssetRegistryOffset <= 0 {
		return
	}
	end := int64(s.TotalHeaderSize)
	if s.PreloadDependencyOffset > s.AssetRegistryOffset {
		end = int64(s.PreloadDependencyOffset)
	}
	start := int64(s.AssetRegistryOffset)
	if end < start {
		r.Fail(codecerr.Structural(start, "asset registry data at %d ends before it starts (%d)", start, end))
		return
	}
	r.SetPosition(start)
	a.assetRegistry = r.ReadBytes(end - start)
}

func (a *Asset) readPreload(r *archive.Reader) {
	s := a.summary
	if s.PreloadDependencyCount <= 0 {
		return
	}
	if !seek(r, "preload dependency", s.PreloadDependencyCount, s.PreloadDependencyOffset) {
		return
	}
	n := int(s.PreloadDependencyCount)
	if int64(n) > r.Remaining()/4 {
		r.Fail(codecerr.Structural(r.Position(), "%d preload dependencies exceed remaining %d bytes", n, r.Remaining()))
		return
	}
	a.preload = make([]types.PackageIndex, 0, n)
	for range n {
		a.preload = append(a.preload, r.ReadPackageIndex())
	}
}
