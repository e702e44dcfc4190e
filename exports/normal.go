package exports

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/properties"
	"github.com/meigma/uasset/types"
)

// NormalExport is an export whose payload starts with a property list.
type NormalExport struct {
	BaseExport
	Properties *properties.List

	// GUIDSerialized records whether the object GUID flag was present.
	// Class default objects and payloads with no room for it omit it.
	GUIDSerialized bool
	ObjectGUID     *types.GUID
}

// Normal implements Export.
func (e *NormalExport) Normal() *NormalExport { return e }

// Write implements Export.
func (e *NormalExport) Write(w archive.Writer) {
	if err := e.Properties.Write(w); err != nil {
		return
	}
	if !e.GUIDSerialized {
		return
	}
	w.WriteBool32(e.ObjectGUID != nil)
	if e.ObjectGUID != nil {
		w.WriteGUID(*e.ObjectGUID)
	}
}

func (d *Decoder) readNormal(r *archive.Reader, b BaseExport, class string) (NormalExport, error) {
	e := NormalExport{BaseExport: b}
	list, err := d.props.ReadList(r, class)
	if err != nil {
		return e, err
	}
	e.Properties = list
	if !b.IsClassDefaultObject() && r.Remaining() >= 4 {
		e.GUIDSerialized = true
		if r.ReadBool32() {
			g := r.ReadGUID()
			e.ObjectGUID = &g
		}
	}
	return e, r.Err()
}
