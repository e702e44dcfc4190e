package properties

import (
	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/names"
	"github.com/meigma/uasset/types"
)

func (d *Decoder) readTagged(r *archive.Reader, owner string) *List {
	l := &List{}
	for r.Err() == nil {
		name := r.ReadFName()
		if r.Err() != nil || r.NameMap().IsNone(name) {
			break
		}
		p := d.readTaggedProperty(r, name, owner)
		if p == nil {
			break
		}
		l.Properties = append(l.Properties, p)
	}
	return l
}

func (d *Decoder) readTaggedProperty(r *archive.Reader, name types.FName, owner string) *Property {
	label := r.NameMap().String(name)
	typeID := readIdent(r)
	typeName := typeID.Name
	size := int64(r.ReadInt32())
	arrayIndex := r.ReadInt32()
	if r.Err() != nil {
		return nil
	}

	v, known := newValue(typeName)
	tagStart := r.Position()
	v.readTag(r)
	tagEnd := r.Position()

	p := &Property{Name: name, TypeName: typeID.FName, Label: label, Slot: -1, ArrayIndex: arrayIndex, Value: v}
	if hasPropertyGUID(r) && r.ReadBool8() {
		g := r.ReadGUID()
		p.GUID = &g
	}
	if r.Err() != nil {
		return nil
	}
	start := r.Position()
	if size < 0 || size > r.Remaining() {
		r.Fail(codecerr.New(codecerr.KindStructural).
			Offset(start).
			Path(label).
			Detail("%s size %d exceeds remaining %d bytes", typeName, size, r.Remaining()).
			Build())
		return nil
	}

	if !known {
		cause := codecerr.UnknownType(tagStart, "property type", typeName)
		p.Value = d.rawFallback(r, typeName, label, tagStart, tagEnd, start, size, cause)
		return p
	}

	win := r.Window(start, start+size)
	v.read(win, &frame{d: d, mode: modeTagged, size: size, name: label, owner: owner})
	err := win.Err()
	if err == nil && win.Position() != start+size {
		err = codecerr.Structural(start, "%s consumed %d of %d bytes", typeName, win.Position()-start, size)
	}
	if err != nil {
		if !codecerr.Recoverable(err) {
			r.Fail(codecerr.WithPath(err, label))
			return nil
		}
		p.Value = d.rawFallback(r, typeName, label, tagStart, tagEnd, start, size, err)
		return p
	}
	r.SetPosition(start + size)
	return p
}

// rawFallback captures a property verbatim and leaves r after its value.
func (d *Decoder) rawFallback(r *archive.Reader, typeName, label string, tagStart, tagEnd, start, size int64, cause error) *RawValue {
	d.log().Warn("property kept as raw bytes",
		"property", label,
		"type", typeName,
		"offset", start,
		"error", cause)

	raw := &RawValue{TypeName: typeName}
	r.SetPosition(tagStart)
	raw.TagData = r.ReadBytes(tagEnd - tagStart)
	r.SetPosition(start)
	raw.Data = r.ReadBytes(size)
	return raw
}

func (l *List) writeTagged(w archive.Writer) {
	for _, p := range l.Properties {
		if w.Err() != nil {
			return
		}
		writeTaggedProperty(w, p)
	}
	w.WriteFName(w.NameMap().Name(names.None))
}

func writeTaggedProperty(w archive.Writer, p *Property) {
	w.WriteFName(p.Name)
	writeIdent(w, Ident{Name: p.Value.Type(), FName: p.TypeName})
	sizeAt := w.Position()
	w.WriteInt32(0)
	w.WriteInt32(p.ArrayIndex)
	p.Value.writeTag(w)
	if hasPropertyGUID(w) {
		w.WriteBool8(p.GUID != nil)
		if p.GUID != nil {
			w.WriteGUID(*p.GUID)
		}
	}
	start := w.Position()
	p.Value.write(w, &frame{mode: modeTagged, size: -1, name: p.Label})
	patchSize(w, sizeAt, w.Position()-start, p.Label)
}
