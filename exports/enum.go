package exports

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// EnumEntry is one enumerator. Packages older than tightly packed enums
// store names only and number them by position.
type EnumEntry struct {
	Name  types.FName
	Value int64
}

// EnumExport is a UEnum.
type EnumExport struct {
	NormalExport
	Field   Field
	Entries []EnumEntry
	// CppForm is the C++ declaration form. Packages that predate enum
	// properties store only whether the enum is namespaced, as form 1.
	CppForm uint8
}

func hasEnumValues(c archive.Context) bool {
	return c.ObjectVersion() >= version.TightlyPackedEnums
}

func hasCppFormByte(c archive.Context) bool {
	v, ok := c.CustomVersion(version.CoreObjectVersion)
	return ok && v >= version.CoreEnumProperties
}

func (d *Decoder) readEnum(r *archive.Reader, b BaseExport, class string) (*EnumExport, error) {
	n, err := d.readNormal(r, b, class)
	if err != nil {
		return nil, err
	}
	e := &EnumExport{NormalExport: n, Field: readField(r)}
	values := hasEnumValues(r)
	minSize := int64(8)
	if values {
		minSize = 16
	}
	count := r.ReadCount(minSize)
	for i := range count {
		entry := EnumEntry{Name: r.ReadFName(), Value: int64(i)}
		if values {
			entry.Value = r.ReadInt64()
		}
		e.Entries = append(e.Entries, entry)
	}
	if hasCppFormByte(r) {
		e.CppForm = r.ReadUint8()
	} else if r.ReadBool32() {
		e.CppForm = 1
	}
	return e, r.Err()
}

func (e *EnumExport) Write(w archive.Writer) {
	e.NormalExport.Write(w)
	e.Field.write(w)
	values := hasEnumValues(w)
	w.WriteInt32(int32(len(e.Entries))) //nolint:gosec // bounded by decode
	for _, entry := range e.Entries {
		w.WriteFName(entry.Name)
		if values {
			w.WriteInt64(entry.Value)
		}
	}
	if hasCppFormByte(w) {
		w.WriteUint8(e.CppForm)
	} else {
		w.WriteBool32(e.CppForm == 1)
	}
}
