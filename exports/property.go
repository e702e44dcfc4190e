package exports

import (
	"github.com/meigma/uasset/archive"
)

// PropertyExport is a property stored as its own export. The descriptor
// layout follows Kind, the export's class name.
type PropertyExport struct {
	NormalExport
	Kind     string
	Property UProperty
}

func (d *Decoder) readProperty(r *archive.Reader, b BaseExport, class string) (*PropertyExport, error) {
	n, err := d.readNormal(r, b, class)
	if err != nil {
		return nil, err
	}
	e := &PropertyExport{NormalExport: n, Kind: class}
	e.Property = readUProperty(r, class)
	return e, r.Err()
}

func (e *PropertyExport) Write(w archive.Writer) {
	e.NormalExport.Write(w)
	e.Property.write(w, e.Kind)
}
