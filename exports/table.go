package exports

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/properties"
	"github.com/meigma/uasset/types"
)

// StringTableEntry is one key and its source string.
type StringTableEntry struct {
	Key   types.FString
	Value types.FString
}

// StringTableExport is a localization string table.
type StringTableExport struct {
	NormalExport
	Namespace types.FString
	Entries   []StringTableEntry
}

func (d *Decoder) readStringTable(r *archive.Reader, b BaseExport, class string) (*StringTableExport, error) {
	n, err := d.readNormal(r, b, class)
	if err != nil {
		return nil, err
	}
	e := &StringTableExport{NormalExport: n, Namespace: r.ReadFString()}
	count := r.ReadCount(8)
	for range count {
		e.Entries = append(e.Entries, StringTableEntry{Key: r.ReadFString(), Value: r.ReadFString()})
	}
	return e, r.Err()
}

func (e *StringTableExport) Write(w archive.Writer) {
	e.NormalExport.Write(w)
	w.WriteFString(e.Namespace)
	w.WriteInt32(int32(len(e.Entries))) //nolint:gosec // bounded by decode
	for _, entry := range e.Entries {
		w.WriteFString(entry.Key)
		w.WriteFString(entry.Value)
	}
}

// DataTableRow is one named row.
type DataTableRow struct {
	Name       types.FName
	Properties *properties.List
}

// DataTableExport is a data table. Its rows are property lists of the
// struct named by the RowStruct property.
type DataTableExport struct {
	NormalExport
	RowStruct string
	Rows      []DataTableRow
}

// rowStruct resolves the object name of the RowStruct property.
func rowStruct(c archive.Context, l *properties.List) string {
	p, ok := l.Find("RowStruct")
	if !ok {
		return ""
	}
	obj, ok := p.Value.(*properties.ObjectValue)
	if !ok {
		return ""
	}
	name, _ := c.ClassName(obj.Value)
	return name
}

func (d *Decoder) readDataTable(r *archive.Reader, b BaseExport, class string) (*DataTableExport, error) {
	n, err := d.readNormal(r, b, class)
	if err != nil {
		return nil, err
	}
	e := &DataTableExport{NormalExport: n, RowStruct: rowStruct(r, n.Properties)}
	count := r.ReadCount(8)
	for range count {
		row := DataTableRow{Name: r.ReadFName()}
		if r.Err() != nil {
			break
		}
		row.Properties, err = d.props.ReadList(r, e.RowStruct)
		if err != nil {
			return nil, err
		}
		e.Rows = append(e.Rows, row)
	}
	return e, r.Err()
}

func (e *DataTableExport) Write(w archive.Writer) {
	e.NormalExport.Write(w)
	w.WriteInt32(int32(len(e.Rows))) //nolint:gosec // bounded by decode
	for _, row := range e.Rows {
		w.WriteFName(row.Name)
		if err := row.Properties.Write(w); err != nil {
			return
		}
	}
}
