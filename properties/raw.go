package properties

import "github.com/meigma/uasset/archive"

// RawValue is a property kept verbatim because its type is unknown or its
// value failed to decode.
type RawValue struct {
	TypeName string
	// TagData is the type-specific tag data, empty for unknown types.
	TagData []byte
	Data    []byte
}

func (v *RawValue) Type() string                     { return v.TypeName }
func (v *RawValue) readTag(*archive.Reader)          {}
func (v *RawValue) writeTag(w archive.Writer)        { w.WriteBytes(v.TagData) }
func (v *RawValue) read(*archive.Reader, *frame)     {}
func (v *RawValue) write(w archive.Writer, _ *frame) { w.WriteBytes(v.Data) }
