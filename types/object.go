package types

// Import is one entry of a package's import table.
type Import struct {
	ClassPackage FName
	ClassName    FName
	OuterIndex   PackageIndex
	ObjectName   FName
	// PackageName is serialized only by editor packages from UE 4.27 on.
	PackageName    FName
	ImportOptional bool
}

// SoftObjectPath references an asset by path. UE5 packages split the path
// into package and asset names; UE4 packages store a single asset path name
// in AssetName. Very old packages store the whole path in LegacyPath.
type SoftObjectPath struct {
	PackageName FName
	AssetName   FName
	SubPath     FString
	LegacyPath  FString
}
