package uasset

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// PackageTag opens every package and closes split export data.
const PackageTag uint32 = 0x9E2A83C1

// Package flags consulted by the codec.
const (
	PackageFlagUnversionedProperties uint32 = 0x00002000
	PackageFlagFilterEditorOnly      uint32 = 0x80000000
)

// Legacy file versions the codec reads. Newer packages use more negative
// numbers.
const (
	LegacyFileVersionOldest int32 = -4
	LegacyFileVersionNewest int32 = -8
)

// Generation records the table sizes of an earlier save of the package.
type Generation struct {
	ExportCount int32
	NameCount   int32
}

// EngineVersionInfo is the engine build that saved a package.
type EngineVersionInfo struct {
	Major      uint16
	Minor      uint16
	Patch      uint16
	Changelist uint32
	Branch     types.FString
}

// Summary is the package file summary at offset zero. Offsets and counts
// are recomputed on encode.
type Summary struct {
	LegacyFileVersion   int32
	LegacyUE3Version    int32
	FileVersionUE4      version.ObjectVersion
	FileVersionUE5      version.ObjectVersionUE5
	FileVersionLicensee int32
	CustomVersions      *version.CustomVersions

	TotalHeaderSize int32
	FolderName      types.FString
	PackageFlags    uint32

	NameCount                     int32
	NameOffset                    int32
	SoftObjectPathsCount          int32
	SoftObjectPathsOffset         int32
	LocalizationID                types.FString
	GatherableTextCount           int32
	GatherableTextOffset          int32
	ExportCount                   int32
	ExportOffset                  int32
	ImportCount                   int32
	ImportOffset                  int32
	DependsOffset                 int32
	SoftPackageRefsCount          int32
	SoftPackageRefsOffset         int32
	SearchableNamesOffset         int32
	ThumbnailTableOffset          int32
	GUID                          types.GUID
	PersistentGUID                types.GUID
	OwnerPersistentGUID           types.GUID
	Generations                   []Generation
	SavedByEngineVersion          EngineVersionInfo
	CompatibleEngineVersion       EngineVersionInfo
	CompressionFlags              uint32
	PackageSource                 uint32
	AdditionalPackages            []types.FString
	TextureAllocations            int32
	AssetRegistryOffset           int32
	BulkDataStartOffset           int64
	WorldTileInfoOffset           int32
	ChunkIDs                      []int32
	PreloadDependencyCount        int32
	PreloadDependencyOffset       int32
	NamesReferencedFromExportData int32
	PayloadTOCOffset              int64
	DataResourceOffset            int32

	// ue4 and ue5 are the versions layout decisions use: the recorded
	// ones, or the configured engine's for unversioned packages.
	ue4 version.ObjectVersion
	ue5 version.ObjectVersionUE5
}

// Unversioned reports whether the package omits its object versions.
func (s *Summary) Unversioned() bool {
	return s.FileVersionUE4 == version.Unversioned
}

func (s *Summary) filterEditorOnly() bool {
	return s.PackageFlags&PackageFlagFilterEditorOnly != 0
}

// customVersionsOptimized reports whether custom versions omit their
// friendly names.
func (s *Summary) customVersionsOptimized() bool {
	return s.LegacyFileVersion <= -6
}

// setVersions resolves the effective object versions against engine.
func (s *Summary) setVersions(engine version.EngineVersion) error {
	s.ue4, s.ue5 = s.FileVersionUE4, s.FileVersionUE5
	if !s.Unversioned() {
		return nil
	}
	if !engine.Valid() {
		return codecerr.New(codecerr.KindStructural).Offset(codecerr.NoOffset).Cause(ErrUnversioned).Build()
	}
	s.ue4, s.ue5 = engine.ObjectVersion(), engine.ObjectVersionUE5()
	return nil
}

func readSummary(r *archive.Reader, engine version.EngineVersion) *Summary {
	if tag := r.ReadUint32(); r.Err() == nil && tag != PackageTag {
		r.Fail(codecerr.Structural(0, "package tag %#x, want %#x", tag, PackageTag))
		return nil
	}
	s := &Summary{LegacyFileVersion: r.ReadInt32()}
	if r.Err() != nil {
		return nil
	}
	if s.LegacyFileVersion > LegacyFileVersionOldest || s.LegacyFileVersion < LegacyFileVersionNewest {
		r.Fail(codecerr.Structural(4, "unsupported legacy file version %d", s.LegacyFileVersion))
		return nil
	}
	if s.LegacyFileVersion != -4 {
		s.LegacyUE3Version = r.ReadInt32()
	}
	s.FileVersionUE4 = version.ObjectVersion(r.ReadInt32())
	if s.LegacyFileVersion <= -8 {
		s.FileVersionUE5 = version.ObjectVersionUE5(r.ReadInt32())
	}
	s.FileVersionLicensee = r.ReadInt32()

	s.CustomVersions = version.NewCustomVersions()
	entrySize := int64(24)
	if s.customVersionsOptimized() {
		entrySize = 20
	}
	n := r.ReadCount(entrySize)
	for range n {
		cv := version.CustomVersion{Key: r.ReadGUID(), Version: r.ReadInt32()}
		if !s.customVersionsOptimized() {
			cv.FriendlyName = r.ReadFString()
		}
		s.CustomVersions.Add(cv)
	}

	if err := s.setVersions(engine); err != nil {
		r.Fail(err)
		return nil
	}
	ue4, ue5 := s.ue4, s.ue5
	s.TotalHeaderSize = r.ReadInt32()
	s.FolderName = r.ReadFString()
	s.PackageFlags = r.ReadUint32()
	editor := !s.filterEditorOnly()
	s.NameCount = r.ReadInt32()
	s.NameOffset = r.ReadInt32()
	if ue5 >= version.UE5AddSoftObjectPathList {
		s.SoftObjectPathsCount = r.ReadInt32()
		s.SoftObjectPathsOffset = r.ReadInt32()
	}
	if editor && ue4 >= version.AddedPackageSummaryLocalizationID {
		s.LocalizationID = r.ReadFString()
	}
	if ue4 >= version.SerializeTextInPackages {
		s.GatherableTextCount = r.ReadInt32()
		s.GatherableTextOffset = r.ReadInt32()
	}
	s.ExportCount = r.ReadInt32()
	s.ExportOffset = r.ReadInt32()
	s.ImportCount = r.ReadInt32()
	s.ImportOffset = r.ReadInt32()
	s.DependsOffset = r.ReadInt32()
	if ue4 >= version.AddStringAssetReferencesMap {
		s.SoftPackageRefsCount = r.ReadInt32()
		s.SoftPackageRefsOffset = r.ReadInt32()
	}
	if ue4 >= version.AddedSearchableNames {
		s.SearchableNamesOffset = r.ReadInt32()
	}
	s.ThumbnailTableOffset = r.ReadInt32()
	s.GUID = r.ReadGUID()
	if editor && ue4 >= version.AddedPackageOwner {
		s.PersistentGUID = r.ReadGUID()
		if ue4 < version.NonOuterPackageImport {
			s.OwnerPersistentGUID = r.ReadGUID()
		}
	}
	n = r.ReadCount(8)
	for range n {
		s.Generations = append(s.Generations, Generation{ExportCount: r.ReadInt32(), NameCount: r.ReadInt32()})
	}
	if ue4 >= version.EngineVersionObject {
		s.SavedByEngineVersion = readEngineVersion(r)
	} else {
		s.SavedByEngineVersion = EngineVersionInfo{Changelist: r.ReadUint32()}
	}
	if ue4 >= version.PackageSummaryHasCompatibleEngine {
		s.CompatibleEngineVersion = readEngineVersion(r)
	}
	s.CompressionFlags = r.ReadUint32()
	chunksAt := r.Position()
	if chunks := r.ReadInt32(); chunks != 0 && r.Err() == nil {
		r.Fail(codecerr.Structural(chunksAt, "compressed packages are not supported (%d chunks)", chunks))
		return nil
	}
	s.PackageSource = r.ReadUint32()
	n = r.ReadCount(4)
	for range n {
		s.AdditionalPackages = append(s.AdditionalPackages, r.ReadFString())
	}
	if s.LegacyFileVersion > -7 {
		s.TextureAllocations = r.ReadInt32()
	}
	s.AssetRegistryOffset = r.ReadInt32()
	s.BulkDataStartOffset = r.ReadInt64()
	if ue4 >= version.WorldLevelInfo {
		s.WorldTileInfoOffset = r.ReadInt32()
	}
	if ue4 >= version.ChangedChunkIDToBeAnArray {
		n = r.ReadCount(4)
		for range n {
			s.ChunkIDs = append(s.ChunkIDs, r.ReadInt32())
		}
	}
	if ue4 >= version.PreloadDependenciesInCookedExports {
		s.PreloadDependencyCount = r.ReadInt32()
		s.PreloadDependencyOffset = r.ReadInt32()
	}
	if ue5 >= version.UE5NamesReferencedFromExportData {
		s.NamesReferencedFromExportData = r.ReadInt32()
	}
	if ue5 >= version.UE5PayloadTOC {
		s.PayloadTOCOffset = r.ReadInt64()
	}
	if ue5 >= version.UE5DataResources {
		s.DataResourceOffset = r.ReadInt32()
	}
	if r.Err() != nil {
		return nil
	}
	if err := s.validate(); err != nil {
		r.Fail(err)
		return nil
	}
	return s
}

// validate rejects summaries describing sections the codec does not carry.
func (s *Summary) validate() error {
	switch {
	case s.GatherableTextCount != 0:
		return codecerr.Structural(codecerr.NoOffset, "gatherable text data is not supported (%d entries)", s.GatherableTextCount)
	case s.SearchableNamesOffset != 0:
		return codecerr.Structural(codecerr.NoOffset, "searchable names are not supported")
	case s.ThumbnailTableOffset != 0:
		return codecerr.Structural(codecerr.NoOffset, "thumbnail tables are not supported")
	case s.WorldTileInfoOffset != 0:
		return codecerr.Structural(codecerr.NoOffset, "world tile info is not supported")
	case s.DataResourceOffset > 0:
		return codecerr.Structural(codecerr.NoOffset, "data resources are not supported")
	case s.TotalHeaderSize < 0:
		return codecerr.Structural(codecerr.NoOffset, "negative header size %d", s.TotalHeaderSize)
	case s.NameCount < 0 || s.ImportCount < 0 || s.ExportCount < 0 || s.SoftObjectPathsCount < 0 || s.SoftPackageRefsCount < 0:
		return codecerr.Structural(codecerr.NoOffset, "negative table count")
	}
	return nil
}

func readEngineVersion(r *archive.Reader) EngineVersionInfo {
	return EngineVersionInfo{
		Major:      r.ReadUint16(),
		Minor:      r.ReadUint16(),
		Patch:      r.ReadUint16(),
		Changelist: r.ReadUint32(),
		Branch:     r.ReadFString(),
	}
}

func writeEngineVersion(w archive.Writer, v EngineVersionInfo) {
	w.WriteUint16(v.Major)
	w.WriteUint16(v.Minor)
	w.WriteUint16(v.Patch)
	w.WriteUint32(v.Changelist)
	w.WriteFString(v.Branch)
}

func (s *Summary) write(w archive.Writer) {
	ue4, ue5 := s.ue4, s.ue5
	editor := !s.filterEditorOnly()

	w.WriteUint32(PackageTag)
	w.WriteInt32(s.LegacyFileVersion)
	if s.LegacyFileVersion != -4 {
		w.WriteInt32(s.LegacyUE3Version)
	}
	w.WriteInt32(int32(s.FileVersionUE4))
	if s.LegacyFileVersion <= -8 {
		w.WriteInt32(int32(s.FileVersionUE5))
	}
	w.WriteInt32(s.FileVersionLicensee)
	custom := s.CustomVersions.All()
	w.WriteInt32(int32(len(custom))) //nolint:gosec // bounded by decode
	for _, cv := range custom {
		w.WriteGUID(cv.Key)
		w.WriteInt32(cv.Version)
		if !s.customVersionsOptimized() {
			w.WriteFString(cv.FriendlyName)
		}
	}

	w.WriteInt32(s.TotalHeaderSize)
	w.WriteFString(s.FolderName)
	w.WriteUint32(s.PackageFlags)
	w.WriteInt32(s.NameCount)
	w.WriteInt32(s.NameOffset)
	if ue5 >= version.UE5AddSoftObjectPathList {
		w.WriteInt32(s.SoftObjectPathsCount)
		w.WriteInt32(s.SoftObjectPathsOffset)
	}
	if editor && ue4 >= version.AddedPackageSummaryLocalizationID {
		w.WriteFString(s.LocalizationID)
	}
	if ue4 >= version.SerializeTextInPackages {
		w.WriteInt32(s.GatherableTextCount)
		w.WriteInt32(s.GatherableTextOffset)
	}
	w.WriteInt32(s.ExportCount)
	w.WriteInt32(s.ExportOffset)
	w.WriteInt32(s.ImportCount)
	w.WriteInt32(s.ImportOffset)
	w.WriteInt32(s.DependsOffset)
	if ue4 >= version.AddStringAssetReferencesMap {
		w.WriteInt32(s.SoftPackageRefsCount)
		w.WriteInt32(s.SoftPackageRefsOffset)
	}
	if ue4 >= version.AddedSearchableNames {
		w.WriteInt32(s.SearchableNamesOffset)
	}
	w.WriteInt32(s.ThumbnailTableOffset)
	w.WriteGUID(s.GUID)
	if editor && ue4 >= version.AddedPackageOwner {
		w.WriteGUID(s.PersistentGUID)
		if ue4 < version.NonOuterPackageImport {
			w.WriteGUID(s.OwnerPersistentGUID)
		}
	}
	w.WriteInt32(int32(len(s.Generations))) //nolint:gosec // bounded by decode
	for _, g := range s.Generations {
		w.WriteInt32(g.ExportCount)
		w.WriteInt32(g.NameCount)
	}
	if ue4 >= version.EngineVersionObject {
		writeEngineVersion(w, s.SavedByEngineVersion)
	} else {
		w.WriteUint32(s.SavedByEngineVersion.Changelist)
	}
	if ue4 >= version.PackageSummaryHasCompatibleEngine {
		writeEngineVersion(w, s.CompatibleEngineVersion)
	}
	w.WriteUint32(s.CompressionFlags)
	w.WriteInt32(0)
	w.WriteUint32(s.PackageSource)
	w.WriteInt32(int32(len(s.AdditionalPackages))) //nolint:gosec // bounded by decode
	for _, p := range s.AdditionalPackages {
		w.WriteFString(p)
	}
	if s.LegacyFileVersion > -7 {
		w.WriteInt32(s.TextureAllocations)
	}
	w.WriteInt32(s.AssetRegistryOffset)
	w.WriteInt64(s.BulkDataStartOffset)
	if ue4 >= version.WorldLevelInfo {
		w.WriteInt32(s.WorldTileInfoOffset)
	}
	if ue4 >= version.ChangedChunkIDToBeAnArray {
		w.WriteInt32(int32(len(s.ChunkIDs))) //nolint:gosec // bounded by decode
		for _, id := range s.ChunkIDs {
			w.WriteInt32(id)
		}
	}
	if ue4 >= version.PreloadDependenciesInCookedExports {
		w.WriteInt32(s.PreloadDependencyCount)
		w.WriteInt32(s.PreloadDependencyOffset)
	}
	if ue5 >= version.UE5NamesReferencedFromExportData {
		w.WriteInt32(s.NamesReferencedFromExportData)
	}
	if ue5 >= version.UE5PayloadTOC {
		w.WriteInt64(s.PayloadTOCOffset)
	}
	if ue5 >= version.UE5DataResources {
		w.WriteInt32(s.DataResourceOffset)
	}
}
