package properties

import (
	"iter"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/unversioned"
)

const (
	fragmentSkipMask  = 0x007F
	fragmentHasZeroes = 0x0080
	fragmentIsLast    = 0x0100
	fragmentValueBits = 9

	maxFragmentSkip   = 0x7F
	maxFragmentValues = 0x7F
)

// Fragment is one run of an unversioned header: Skip slots without a
// value followed by Values slots that are serialized unless masked as zero.
type Fragment struct {
	Skip      uint8
	Values    uint8
	HasZeroes bool
	IsLast    bool
}

func unpackFragment(v uint16) Fragment {
	return Fragment{
		Skip:      uint8(v & fragmentSkipMask),
		Values:    uint8(v >> fragmentValueBits),
		HasZeroes: v&fragmentHasZeroes != 0,
		IsLast:    v&fragmentIsLast != 0,
	}
}

func (f Fragment) pack() uint16 {
	v := uint16(f.Skip&maxFragmentSkip) | uint16(f.Values&maxFragmentValues)<<fragmentValueBits
	if f.HasZeroes {
		v |= fragmentHasZeroes
	}
	if f.IsLast {
		v |= fragmentIsLast
	}
	return v
}

// Header selects the schema slots an unversioned list serializes.
type Header struct {
	Fragments []Fragment
	// ZeroMask holds one bit per value of the fragments with zeroes,
	// least significant bit first. A set bit marks a zero value that is
	// not serialized.
	ZeroMask []byte
}

// NewHeader builds a header without zero mask serializing the given slots,
// which must be strictly ascending.
func NewHeader(slots []int) *Header {
	h := &Header{}
	next := 0
	for i := 0; i < len(slots); {
		skip := slots[i] - next
		for skip > maxFragmentSkip {
			h.Fragments = append(h.Fragments, Fragment{Skip: maxFragmentSkip})
			skip -= maxFragmentSkip
		}
		frag := Fragment{Skip: uint8(skip)} //nolint:gosec // bounded above
		for i < len(slots) && frag.Values < maxFragmentValues && (frag.Values == 0 || slots[i] == slots[i-1]+1) {
			frag.Values++
			i++
		}
		next = slots[i-1] + 1
		h.Fragments = append(h.Fragments, frag)
	}
	if len(h.Fragments) == 0 {
		h.Fragments = append(h.Fragments, Fragment{})
	}
	h.Fragments[len(h.Fragments)-1].IsLast = true
	return h
}

// maskBits returns the number of zero mask bits the fragments require.
func (h *Header) maskBits() int {
	n := 0
	for _, f := range h.Fragments {
		if f.HasZeroes {
			n += int(f.Values)
		}
	}
	return n
}

func maskBytes(bits int) int {
	switch {
	case bits == 0:
		return 0
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	default:
		return (bits + 31) / 32 * 4
	}
}

func (h *Header) zero(bit int) bool {
	b := bit / 8
	return b < len(h.ZeroMask) && h.ZeroMask[b]&(1<<(bit%8)) != 0
}

// Slots iterates the schema slots that carry a serialized value.
func (h *Header) Slots() iter.Seq[int] {
	return func(yield func(int) bool) {
		idx, bit := 0, 0
		for _, f := range h.Fragments {
			idx += int(f.Skip)
			for range f.Values {
				zero := false
				if f.HasZeroes {
					zero = h.zero(bit)
					bit++
				}
				if !zero && !yield(idx) {
					return
				}
				idx++
			}
		}
	}
}

// ValueCount returns the number of serialized values.
func (h *Header) ValueCount() int {
	n := 0
	for range h.Slots() {
		n++
	}
	return n
}

func readHeader(r *archive.Reader) *Header {
	h := &Header{}
	for r.Err() == nil {
		f := unpackFragment(r.ReadUint16())
		if r.Err() != nil {
			return nil
		}
		h.Fragments = append(h.Fragments, f)
		if f.IsLast {
			break
		}
	}
	if n := maskBytes(h.maskBits()); n > 0 {
		h.ZeroMask = r.ReadBytes(int64(n))
	}
	return h
}

func (h *Header) write(w archive.Writer) {
	for _, f := range h.Fragments {
		w.WriteUint16(f.pack())
	}
	w.WriteBytes(h.ZeroMask)
}

func (d *Decoder) readUnversioned(r *archive.Reader, owner string) *List {
	at := r.Position()
	schema := r.Schema()
	if schema == nil {
		r.Fail(codecerr.New(codecerr.KindUnknownType).
			Offset(at).
			Detail("unversioned properties of %q need mappings", owner).
			Build())
		return nil
	}
	if _, ok := schema.Struct(owner); !ok {
		r.Fail(codecerr.UnknownType(at, "struct", owner))
		return nil
	}

	h := readHeader(r)
	if r.Err() != nil {
		return nil
	}
	l := &List{Header: h, Struct: owner}
	for slot := range h.Slots() {
		s, ok := unversioned.ResolveSlot(schema, owner, slot)
		if !ok {
			r.Fail(codecerr.Structural(r.Position(), "schema slot %d outside %s", slot, owner))
			return nil
		}
		pt := &s.Property.Type
		v, err := newSchemaValue(pt, r.Position())
		if err != nil {
			r.Fail(codecerr.WithPath(err, s.Property.Name))
			return nil
		}
		v.read(r, &frame{d: d, mode: modeUnversioned, size: -1, name: s.Property.Name, owner: s.Owner.Name, schema: pt})
		if r.Err() != nil {
			return nil
		}
		l.Properties = append(l.Properties, &Property{
			Label:      s.Property.Name,
			Slot:       slot,
			ArrayIndex: int32(s.ArrayIndex), //nolint:gosec // static array sizes fit in a byte
			Value:      v,
		})
	}
	return l
}

func (l *List) writeUnversioned(w archive.Writer) {
	if want := l.Header.ValueCount(); want != len(l.Properties) {
		w.Fail(codecerr.New(codecerr.KindEncodeSizeMismatch).
			Stage(codecerr.StageEncode).
			Path(l.Struct).
			Detail("unversioned header selects %d values, list holds %d", want, len(l.Properties)).
			Build())
		return
	}
	l.Header.write(w)
	for _, p := range l.Properties {
		p.Value.write(w, &frame{mode: modeUnversioned, size: -1, name: p.Label})
	}
}
