package archive

import (
	"encoding/binary"
	"math"

	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/internal/sizing"
	"github.com/meigma/uasset/types"
)

// Reader is a positioned little-endian reader over an in-memory package.
// Positions are absolute offsets into the package bytes.
type Reader struct {
	Context
	data []byte
	pos  int64
	err  error
}

// NewReader returns a reader over data positioned at zero.
func NewReader(data []byte, ctx Context) *Reader {
	return &Reader{Context: ctx, data: data}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err unless an earlier error is already recorded. Codec
// errors without an offset are stamped with the current position.
func (r *Reader) Fail(err error) {
	if r.err != nil || err == nil {
		return
	}
	if ce, ok := err.(*codecerr.Error); ok && ce.Offset < 0 { //nolint:errorlint // stamping the outermost error only
		cp := *ce
		cp.Offset = r.pos
		err = &cp
	}
	r.err = err
}

// Position returns the current absolute offset.
func (r *Reader) Position() int64 {
	return r.pos
}

// SetPosition moves the cursor. Positions beyond the readable window fail.
func (r *Reader) SetPosition(pos int64) {
	if r.err != nil {
		return
	}
	if pos < 0 || pos > int64(len(r.data)) {
		r.Fail(codecerr.Structural(r.pos, "seek to %d outside %d bytes", pos, len(r.data)))
		return
	}
	r.pos = pos
}

// Len returns the end of the readable window.
func (r *Reader) Len() int64 {
	return int64(len(r.data))
}

// Remaining returns the bytes left before the end of the window.
func (r *Reader) Remaining() int64 {
	return int64(len(r.data)) - r.pos
}

// Window returns a reader sharing r's data and context that is positioned
// at start and cannot read past end. Positions stay absolute.
func (r *Reader) Window(start, end int64) *Reader {
	w := &Reader{Context: r.Context, pos: start}
	if start < 0 || end < start || end > int64(len(r.data)) {
		w.data = r.data[:0]
		w.pos = 0
		w.err = codecerr.Structural(start, "window [%d, %d) outside %d bytes", start, end, len(r.data))
		return w
	}
	w.data = r.data[:end]
	return w
}

func (r *Reader) take(n int64) []byte {
	if r.err != nil {
		return nil
	}
	if !sizing.Remaining(r.pos, n, int64(len(r.data))) {
		r.Fail(codecerr.Truncated(r.pos, n, r.Remaining()))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadInt8 reads a signed byte.
func (r *Reader) ReadInt8() int8 {
	return int8(r.ReadUint8()) //nolint:gosec // reinterpretation
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadInt16 reads a little-endian int16.
func (r *Reader) ReadInt16() int16 {
	return int16(r.ReadUint16()) //nolint:gosec // reinterpretation
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32()) //nolint:gosec // reinterpretation
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() int64 {
	return int64(r.ReadUint64()) //nolint:gosec // reinterpretation
}

// ReadFloat32 reads an IEEE 754 single.
func (r *Reader) ReadFloat32() float32 {
	return math.Float32frombits(r.ReadUint32())
}

// ReadFloat64 reads an IEEE 754 double.
func (r *Reader) ReadFloat64() float64 {
	return math.Float64frombits(r.ReadUint64())
}

// ReadBool32 reads a 32-bit boolean. Values other than 0 and 1 are
// malformed.
func (r *Reader) ReadBool32() bool {
	at := r.pos
	v := r.ReadUint32()
	if v > 1 {
		r.Fail(codecerr.Structural(at, "invalid boolean %d", v))
		return false
	}
	return v == 1
}

// ReadBool8 reads an 8-bit boolean.
func (r *Reader) ReadBool8() bool {
	at := r.pos
	v := r.ReadUint8()
	if v > 1 {
		r.Fail(codecerr.Structural(at, "invalid boolean %d", v))
		return false
	}
	return v == 1
}

// ReadBytes returns a copy of the next n bytes. Zero-length reads return
// nil.
func (r *Reader) ReadBytes(n int64) []byte {
	b := r.take(n)
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

// ReadCount reads an int32 element count and checks that count elements of
// at least minSize bytes fit in the remaining data.
func (r *Reader) ReadCount(minSize int64) int {
	at := r.pos
	n := r.ReadInt32()
	if r.err != nil {
		return 0
	}
	if n < 0 {
		r.Fail(codecerr.Structural(at, "negative count %d", n))
		return 0
	}
	if minSize > 0 && int64(n) > r.Remaining()/minSize {
		r.Fail(codecerr.Structural(at, "count %d exceeds remaining %d bytes", n, r.Remaining()))
		return 0
	}
	return int(n)
}

// ReadFString reads a length-prefixed string.
func (r *Reader) ReadFString() types.FString {
	at := r.pos
	n := r.ReadInt32()
	if r.err != nil {
		return types.FString{}
	}
	switch {
	case n == 0:
		return types.NullFString()
	case n > 0:
		b := r.take(int64(n))
		if b == nil {
			return types.FString{}
		}
		if b[n-1] != 0 {
			r.Fail(codecerr.Structural(at, "string of %d bytes is not NUL-terminated", n))
			return types.FString{}
		}
		return types.FString{Value: string(b[:n-1])}
	default:
		if n == math.MinInt32 {
			r.Fail(codecerr.Structural(at, "invalid string length %d", n))
			return types.FString{}
		}
		units := int64(-n)
		b := r.take(units * 2)
		if b == nil {
			return types.FString{}
		}
		if b[len(b)-1] != 0 || b[len(b)-2] != 0 {
			r.Fail(codecerr.Structural(at, "wide string of %d units is not NUL-terminated", units))
			return types.FString{}
		}
		s, lossless, err := decodeUTF16(b[:len(b)-2])
		if err != nil {
			r.Fail(codecerr.New(codecerr.KindStructural).Offset(at).Cause(err).Build())
			return types.FString{}
		}
		out := types.FString{Value: s, Encoding: types.EncodingUTF16}
		if !lossless {
			out.Units = string(b[:len(b)-2])
		}
		return out
	}
}

// ReadFName reads a name reference and checks it against the name table.
func (r *Reader) ReadFName() types.FName {
	at := r.pos
	n := types.FName{Index: r.ReadInt32(), Number: r.ReadInt32()}
	if r.err != nil {
		return types.FName{}
	}
	nm := r.NameMap()
	if !nm.Contains(n.Index) {
		r.Fail(codecerr.UnresolvedReference(at, "name", int64(n.Index), nm.Len()))
		return types.FName{}
	}
	return n
}

// ReadGUID reads 16 raw bytes.
func (r *Reader) ReadGUID() types.GUID {
	var g types.GUID
	copy(g[:], r.take(16))
	return g
}

// ReadPackageIndex reads an object reference. The index is not resolved.
func (r *Reader) ReadPackageIndex() types.PackageIndex {
	return types.PackageIndex(r.ReadInt32())
}
