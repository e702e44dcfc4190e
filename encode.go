package uasset

import (
	"fmt"
	"math"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/internal/sizing"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// Encode serializes the asset. An unmodified decoded asset encodes to the
// bytes it was decoded from, split packages to the concatenation of both
// halves.
//
// Encode recomputes every table offset and count and each export's serial
// size and offset.
func (a *Asset) Encode() ([]byte, error) {
	out, _, err := a.encode()
	return out, err
}

// EncodeSplit serializes the asset as a package header and its export
// data, the contents of a .uasset and a .uexp file.
func (a *Asset) EncodeSplit() (uasset, uexp []byte, err error) {
	out, headerSize, err := a.encode()
	if err != nil {
		return nil, nil, err
	}
	return out[:headerSize:headerSize], out[headerSize:], nil
}

func (a *Asset) encode() ([]byte, int64, error) {
	if a.cfg.headerOnly {
		return nil, 0, ErrHeaderOnly
	}
	if a.state != StateDecoded {
		return nil, 0, fmt.Errorf("uasset: cannot encode an asset in state %s", a.state)
	}

	// Payloads go first: they may intern names the header must carry.
	payloads, err := a.encodePayloads()
	if err != nil {
		return nil, 0, err
	}

	w := archive.NewWriter(a)
	s := a.summary
	s.write(w)
	summaryEnd := w.Position()

	s.NameCount = int32(a.names.Len()) //nolint:gosec // bounded by the header size check
	s.NameOffset = sectionOffset(s.NameOffset, w.Position(), s.NameCount == 0)
	a.names.WriteAll(w, nameHashes(w))

	if w.ObjectVersionUE5() >= version.UE5AddSoftObjectPathList {
		s.SoftObjectPathsCount = int32(len(a.softObjectPaths)) //nolint:gosec // bounded by the header size check
		s.SoftObjectPathsOffset = sectionOffset(s.SoftObjectPathsOffset, w.Position(), len(a.softObjectPaths) == 0)
		for _, p := range a.softObjectPaths {
			archive.WriteSoftObjectPath(w, p)
		}
	}
	if w.ObjectVersion() >= version.SerializeTextInPackages {
		s.GatherableTextOffset = sectionOffset(s.GatherableTextOffset, w.Position(), true)
	}

	s.ImportCount = int32(len(a.imports)) //nolint:gosec // bounded by the header size check
	s.ImportOffset = sectionOffset(s.ImportOffset, w.Position(), len(a.imports) == 0)
	for _, imp := range a.imports {
		writeImport(w, imp)
	}

	s.ExportCount = int32(len(a.exports)) //nolint:gosec // bounded by the header size check
	s.ExportOffset = sectionOffset(s.ExportOffset, w.Position(), len(a.exports) == 0)
	exportTable := w.Position()
	for _, e := range a.exports {
		e.Base().WriteEntry(w)
	}
	exportTableEnd := w.Position()

	if a.depends != nil {
		s.DependsOffset = int32(w.Position()) //nolint:gosec // bounded by the header size check
		for i := range a.exports {
			var deps []types.PackageIndex
			if i < len(a.depends) {
				deps = a.depends[i]
			}
			w.WriteInt32(int32(len(deps))) //nolint:gosec // bounded by the header size check
			for _, d := range deps {
				w.WritePackageIndex(d)
			}
		}
	} else {
		s.DependsOffset = 0
	}

	if w.ObjectVersion() >= version.AddStringAssetReferencesMap {
		s.SoftPackageRefsCount = int32(len(a.softPackageRefs)) //nolint:gosec // bounded by the header size check
		s.SoftPackageRefsOffset = sectionOffset(s.SoftPackageRefsOffset, w.Position(), len(a.softPackageRefs) == 0)
		for _, n := range a.softPackageRefs {
			w.WriteFName(n)
		}
	}

	s.AssetRegistryOffset = sectionOffset(s.AssetRegistryOffset, w.Position(), len(a.assetRegistry) == 0)
	w.WriteBytes(a.assetRegistry)

	if w.ObjectVersion() >= version.PreloadDependenciesInCookedExports {
		if len(a.preload) > 0 || s.PreloadDependencyCount >= 0 {
			s.PreloadDependencyCount = int32(len(a.preload)) //nolint:gosec // bounded by the header size check
		}
		s.PreloadDependencyOffset = sectionOffset(s.PreloadDependencyOffset, w.Position(), len(a.preload) == 0)
		for _, p := range a.preload {
			w.WritePackageIndex(p)
		}
	}

	headerSize, err := sizing.ToInt32(w.Position(), ErrTooLarge)
	if err != nil {
		return nil, 0, err
	}
	s.TotalHeaderSize = headerSize

	// Lay the payloads out after the header and patch the export table.
	offset := int64(headerSize)
	for i, e := range a.exports {
		b := e.Base()
		b.SerialOffset = offset
		b.SerialSize = int64(len(payloads[i]))
		offset += b.SerialSize
	}
	w.SetPosition(exportTable)
	for _, e := range a.exports {
		e.Base().WriteEntry(w)
	}
	if w.Err() == nil && w.Position() != exportTableEnd {
		return nil, 0, codecerr.SizeMismatch("export table", exportTableEnd-exportTable, w.Position()-exportTable)
	}

	if a.bulkDataRel >= 0 {
		s.BulkDataStartOffset = offset + a.bulkDataRel
	}
	if a.payloadTOCRel >= 0 {
		s.PayloadTOCOffset = offset + a.payloadTOCRel
	}
	if a.built {
		s.NamesReferencedFromExportData = s.NameCount
		s.Generations[len(s.Generations)-1] = Generation{ExportCount: s.ExportCount, NameCount: s.NameCount}
	}

	w.SetPosition(0)
	s.write(w)
	if w.Err() == nil && w.Position() != summaryEnd {
		return nil, 0, codecerr.SizeMismatch("package summary", summaryEnd, w.Position())
	}
	if err := w.Err(); err != nil {
		return nil, 0, codecerr.WithStage(err, codecerr.StageEncode, w.Position())
	}

	if offset+int64(len(a.trailer)) > math.MaxInt {
		return nil, 0, ErrTooLarge
	}
	out := make([]byte, 0, offset+int64(len(a.trailer)))
	out = append(out, w.Bytes()[:headerSize]...)
	for _, p := range payloads {
		out = append(out, p...)
	}
	out = append(out, a.trailer...)
	return out, int64(headerSize), nil
}

// sectionOffset returns the offset recorded for a section written at pos.
// Empty sections recorded without an offset keep none.
func sectionOffset(recorded int32, pos int64, empty bool) int32 {
	if empty && recorded == 0 {
		return 0
	}
	return int32(pos) //nolint:gosec // the header size is checked before use
}

func (a *Asset) encodePayloads() ([][]byte, error) {
	out := make([][]byte, len(a.exports))
	for i, e := range a.exports {
		w := archive.NewWriter(a)
		if err := exports.WritePayload(archive.NewCheckedWriter(w), e); err != nil {
			err = codecerr.WithStage(err, codecerr.StageEncode, codecerr.NoOffset)
			return nil, codecerr.WithPath(err, fmt.Sprintf("export %d", i+1))
		}
		out[i] = w.Bytes()
	}
	return out, nil
}
