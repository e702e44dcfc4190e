package types

// PackageIndex addresses an object in a package: zero is null, positive
// values are 1-based export indices, negative values are 1-based import
// indices.
type PackageIndex int32

// NullIndex is the null object reference.
const NullIndex PackageIndex = 0

// ImportIndex returns the package index of the zero-based import i.
func ImportIndex(i int) PackageIndex {
	return PackageIndex(-i - 1) //nolint:gosec // table sizes are bounded by int32 counts
}

// ExportIndex returns the package index of the zero-based export i.
func ExportIndex(i int) PackageIndex {
	return PackageIndex(i + 1) //nolint:gosec // table sizes are bounded by int32 counts
}

// IsNull reports whether p references nothing.
func (p PackageIndex) IsNull() bool { return p == 0 }

// IsImport reports whether p references the import table.
func (p PackageIndex) IsImport() bool { return p < 0 }

// IsExport reports whether p references the export table.
func (p PackageIndex) IsExport() bool { return p > 0 }

// Import returns the zero-based import slot. Only meaningful when IsImport.
func (p PackageIndex) Import() int { return int(-int64(p) - 1) }

// Export returns the zero-based export slot. Only meaningful when IsExport.
func (p PackageIndex) Export() int { return int(p) - 1 }
