package archive

import (
	"encoding/binary"
	"math"

	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
)

// Writer is a positioned little-endian writer. Writing at a position
// before the end overwrites; writing at the end extends.
type Writer interface {
	Context

	Position() int64
	SetPosition(pos int64)
	Len() int64
	Bytes() []byte
	Err() error
	Fail(err error)

	WriteUint8(v uint8)
	WriteInt8(v int8)
	WriteUint16(v uint16)
	WriteInt16(v int16)
	WriteUint32(v uint32)
	WriteInt32(v int32)
	WriteUint64(v uint64)
	WriteInt64(v int64)
	WriteFloat32(v float32)
	WriteFloat64(v float64)
	WriteBool32(v bool)
	WriteBool8(v bool)
	WriteBytes(p []byte)
	WriteFString(s types.FString)
	WriteFName(n types.FName)
	WriteGUID(g types.GUID)
	WritePackageIndex(p types.PackageIndex)
}

// BufferWriter is the in-memory Writer.
type BufferWriter struct {
	Context
	buf []byte
	pos int64
	err error
}

var _ Writer = (*BufferWriter)(nil)

// NewWriter returns an empty writer carrying ctx.
func NewWriter(ctx Context) *BufferWriter {
	return &BufferWriter{Context: ctx}
}

// Position returns the current offset.
func (w *BufferWriter) Position() int64 { return w.pos }

// Len returns the number of bytes written so far.
func (w *BufferWriter) Len() int64 { return int64(len(w.buf)) }

// Bytes returns the written bytes. The slice aliases the writer's buffer.
func (w *BufferWriter) Bytes() []byte { return w.buf }

// Err returns the first error encountered.
func (w *BufferWriter) Err() error { return w.err }

// Fail records err unless an earlier error is already recorded.
func (w *BufferWriter) Fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// SetPosition moves the cursor within the written bytes.
func (w *BufferWriter) SetPosition(pos int64) {
	if pos < 0 || pos > int64(len(w.buf)) {
		w.Fail(codecerr.Structural(w.pos, "seek to %d outside %d written bytes", pos, len(w.buf)))
		return
	}
	w.pos = pos
}

// WriteBytes writes p at the current position.
func (w *BufferWriter) WriteBytes(p []byte) {
	end := w.pos + int64(len(p))
	if end > int64(len(w.buf)) {
		w.buf = append(w.buf, make([]byte, end-int64(len(w.buf)))...)
	}
	copy(w.buf[w.pos:end], p)
	w.pos = end
}

func (w *BufferWriter) WriteUint8(v uint8) { w.WriteBytes([]byte{v}) }
func (w *BufferWriter) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) } //nolint:gosec // reinterpretation

func (w *BufferWriter) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.WriteBytes(b[:])
}

func (w *BufferWriter) WriteInt16(v int16) { w.WriteUint16(uint16(v)) } //nolint:gosec // reinterpretation

func (w *BufferWriter) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.WriteBytes(b[:])
}

func (w *BufferWriter) WriteInt32(v int32) { w.WriteUint32(uint32(v)) } //nolint:gosec // reinterpretation

func (w *BufferWriter) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.WriteBytes(b[:])
}

func (w *BufferWriter) WriteInt64(v int64)     { w.WriteUint64(uint64(v)) } //nolint:gosec // reinterpretation
func (w *BufferWriter) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *BufferWriter) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

func (w *BufferWriter) WriteBool32(v bool) {
	if v {
		w.WriteUint32(1)
	} else {
		w.WriteUint32(0)
	}
}

func (w *BufferWriter) WriteBool8(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteFString writes s in its recorded encoding, adding the terminator.
func (w *BufferWriter) WriteFString(s types.FString) {
	if s.Null {
		w.WriteInt32(0)
		return
	}
	if s.Encoding == types.EncodingUTF16 {
		b, err := wideUnits(s)
		if err != nil {
			w.Fail(codecerr.New(codecerr.KindStructural).Stage(codecerr.StageEncode).Cause(err).Build())
			return
		}
		units := len(b)/2 + 1
		if units > math.MaxInt32 {
			w.Fail(codecerr.SizeMismatch("string length", math.MaxInt32, int64(units)))
			return
		}
		w.WriteInt32(-int32(units))
		w.WriteBytes(b)
		w.WriteUint16(0)
		return
	}
	n := len(s.Value) + 1
	if n > math.MaxInt32 {
		w.Fail(codecerr.SizeMismatch("string length", math.MaxInt32, int64(n)))
		return
	}
	w.WriteInt32(int32(n))
	w.WriteBytes([]byte(s.Value))
	w.WriteUint8(0)
}

// WriteFName writes a name reference.
func (w *BufferWriter) WriteFName(n types.FName) {
	w.WriteInt32(n.Index)
	w.WriteInt32(n.Number)
}

// WriteGUID writes 16 raw bytes.
func (w *BufferWriter) WriteGUID(g types.GUID) { w.WriteBytes(g[:]) }

// WritePackageIndex writes an object reference.
func (w *BufferWriter) WritePackageIndex(p types.PackageIndex) { w.WriteInt32(int32(p)) }
