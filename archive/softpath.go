package archive

import (
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// ReadSoftObjectPath reads a soft object path in the layout the package
// version selects.
func ReadSoftObjectPath(r *Reader) types.SoftObjectPath {
	var p types.SoftObjectPath
	switch {
	case r.ObjectVersionUE5() >= version.UE5SoftObjectPathRemoveAssetPathNames:
		p.PackageName = r.ReadFName()
		p.AssetName = r.ReadFName()
		p.SubPath = r.ReadFString()
	case r.ObjectVersion() >= version.AddedSoftObjectPath:
		p.AssetName = r.ReadFName()
		p.SubPath = r.ReadFString()
	default:
		p.LegacyPath = r.ReadFString()
	}
	return p
}

// WriteSoftObjectPath is the inverse of ReadSoftObjectPath.
func WriteSoftObjectPath(w Writer, p types.SoftObjectPath) {
	switch {
	case w.ObjectVersionUE5() >= version.UE5SoftObjectPathRemoveAssetPathNames:
		w.WriteFName(p.PackageName)
		w.WriteFName(p.AssetName)
		w.WriteFString(p.SubPath)
	case w.ObjectVersion() >= version.AddedSoftObjectPath:
		w.WriteFName(p.AssetName)
		w.WriteFString(p.SubPath)
	default:
		w.WriteFString(p.LegacyPath)
	}
}
