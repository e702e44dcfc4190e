package properties

import (
	"strconv"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// Text history types with a structured layout. Others are kept raw.
const (
	TextHistoryNone             int8 = -1
	TextHistoryBase             int8 = 0
	TextHistoryStringTableEntry int8 = 11
)

// TextValue is a localizable text.
type TextValue struct {
	noTag
	Flags   uint32
	History int8

	// CultureInvariant is the optional source string of a text without
	// history.
	CultureInvariant *types.FString

	Namespace types.FString
	Key       types.FString
	Source    types.FString

	TableID  types.FName
	TableKey types.FString

	// Raw holds the body of histories without a structured layout.
	Raw []byte
}

func (*TextValue) Type() string { return "TextProperty" }

func hasCultureInvariant(c archive.Context) bool {
	v, ok := c.CustomVersion(version.EditorObjectVersion)
	return ok && v >= version.EditorCultureInvariantTextKeyStability
}

func (v *TextValue) read(r *archive.Reader, f *frame) {
	at := r.Position()
	if r.ObjectVersion() < version.FTextHistory {
		r.Fail(codecerr.UnknownType(at, "text layout", "pre-history"))
		return
	}
	v.Flags = r.ReadUint32()
	v.History = r.ReadInt8()
	switch v.History {
	case TextHistoryNone:
		if hasCultureInvariant(r) && r.ReadBool32() {
			s := r.ReadFString()
			v.CultureInvariant = &s
		}
	case TextHistoryBase:
		v.Namespace = r.ReadFString()
		v.Key = r.ReadFString()
		v.Source = r.ReadFString()
	case TextHistoryStringTableEntry:
		v.TableID = r.ReadFName()
		v.TableKey = r.ReadFString()
	default:
		rest := f.size - (r.Position() - at)
		if f.mode != modeTagged || rest < 0 {
			r.Fail(codecerr.UnknownType(at, "text history", strconv.Itoa(int(v.History))))
			return
		}
		v.Raw = r.ReadBytes(rest)
	}
}

func (v *TextValue) write(w archive.Writer, _ *frame) {
	w.WriteUint32(v.Flags)
	w.WriteInt8(v.History)
	switch v.History {
	case TextHistoryNone:
		if hasCultureInvariant(w) {
			w.WriteBool32(v.CultureInvariant != nil)
			if v.CultureInvariant != nil {
				w.WriteFString(*v.CultureInvariant)
			}
		}
	case TextHistoryBase:
		w.WriteFString(v.Namespace)
		w.WriteFString(v.Key)
		w.WriteFString(v.Source)
	case TextHistoryStringTableEntry:
		w.WriteFName(v.TableID)
		w.WriteFString(v.TableKey)
	default:
		w.WriteBytes(v.Raw)
	}
}
