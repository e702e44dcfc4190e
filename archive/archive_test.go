package archive_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

func newContext() *archive.Static {
	ctx := archive.NewStatic(version.LatestObjectVersion)
	ctx.Names.Intern("None")
	ctx.Names.Intern("Hello")
	return ctx
}

func TestPrimitivesRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := newContext()
	w := archive.NewWriter(ctx)
	w.WriteUint8(0xAB)
	w.WriteInt8(-2)
	w.WriteUint16(0xBEEF)
	w.WriteInt16(-300)
	w.WriteUint32(0xDEADBEEF)
	w.WriteInt32(-70000)
	w.WriteUint64(0x0102030405060708)
	w.WriteInt64(-1)
	w.WriteFloat32(1.5)
	w.WriteFloat64(-2.25)
	w.WriteBool32(true)
	w.WriteBool8(false)
	w.WriteFName(types.FName{Index: 1, Number: 3})
	w.WriteGUID(types.GUIDFromParts(1, 2, 3, 4))
	w.WritePackageIndex(types.ImportIndex(0))
	require.NoError(t, w.Err())
	assert.Equal(t, int64(1+1+2+2+4+4+8+8+4+8+4+1+8+16+4), w.Len())

	r := archive.NewReader(w.Bytes(), ctx)
	assert.Equal(t, uint8(0xAB), r.ReadUint8())
	assert.Equal(t, int8(-2), r.ReadInt8())
	assert.Equal(t, uint16(0xBEEF), r.ReadUint16())
	assert.Equal(t, int16(-300), r.ReadInt16())
	assert.Equal(t, uint32(0xDEADBEEF), r.ReadUint32())
	assert.Equal(t, int32(-70000), r.ReadInt32())
	assert.Equal(t, uint64(0x0102030405060708), r.ReadUint64())
	assert.Equal(t, int64(-1), r.ReadInt64())
	assert.InDelta(t, 1.5, r.ReadFloat32(), 0)
	assert.InDelta(t, -2.25, r.ReadFloat64(), 0)
	assert.True(t, r.ReadBool32())
	assert.False(t, r.ReadBool8())
	assert.Equal(t, types.FName{Index: 1, Number: 3}, r.ReadFName())
	assert.Equal(t, types.GUIDFromParts(1, 2, 3, 4), r.ReadGUID())
	assert.Equal(t, types.PackageIndex(-1), r.ReadPackageIndex())
	require.NoError(t, r.Err())
	assert.Zero(t, r.Remaining())
}

func TestFStringEncodings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   types.FString
		want []byte
	}{
		{
			name: "null",
			in:   types.NullFString(),
			want: []byte{0, 0, 0, 0},
		},
		{
			name: "empty",
			in:   types.FString{},
			want: []byte{1, 0, 0, 0, 0},
		},
		{
			name: "narrow",
			in:   types.NewFString("Hi"),
			want: []byte{3, 0, 0, 0, 'H', 'i', 0},
		},
		{
			name: "wide",
			in:   types.NewFString("é"),
			want: []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xE9, 0x00, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := newContext()
			w := archive.NewWriter(ctx)
			w.WriteFString(tt.in)
			require.NoError(t, w.Err())
			assert.Equal(t, tt.want, w.Bytes())

			r := archive.NewReader(w.Bytes(), ctx)
			got := r.ReadFString()
			require.NoError(t, r.Err())
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestFStringUnpairedSurrogate(t *testing.T) {
	t.Parallel()

	ctx := newContext()
	data := []byte{0xFD, 0xFF, 0xFF, 0xFF, 'A', 0x00, 0x00, 0xD8, 0, 0}
	r := archive.NewReader(data, ctx)
	s := r.ReadFString()
	require.NoError(t, r.Err())
	assert.Equal(t, "A\uFFFD", s.Value)
	assert.Equal(t, types.EncodingUTF16, s.Encoding)

	w := archive.NewWriter(ctx)
	w.WriteFString(s)
	require.NoError(t, w.Err())
	assert.Equal(t, data, w.Bytes())

	s.Value = "B\u00e9"
	w = archive.NewWriter(ctx)
	w.WriteFString(s)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{0xFD, 0xFF, 0xFF, 0xFF, 'B', 0x00, 0xE9, 0x00, 0, 0}, w.Bytes())
}

func TestReaderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		read func(r *archive.Reader)
		kind codecerr.Kind
		at   int64
	}{
		{
			name: "truncated uint32",
			data: []byte{1, 2},
			read: func(r *archive.Reader) { r.ReadUint32() },
			kind: codecerr.KindStructural,
			at:   0,
		},
		{
			name: "unterminated string",
			data: []byte{2, 0, 0, 0, 'a', 'b'},
			read: func(r *archive.Reader) { r.ReadFString() },
			kind: codecerr.KindStructural,
			at:   0,
		},
		{
			name: "name out of range",
			data: []byte{1, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0},
			read: func(r *archive.Reader) { r.ReadUint32(); r.ReadFName() },
			kind: codecerr.KindUnresolvedReference,
			at:   4,
		},
		{
			name: "bad boolean",
			data: []byte{2, 0, 0, 0},
			read: func(r *archive.Reader) { r.ReadBool32() },
			kind: codecerr.KindStructural,
			at:   0,
		},
		{
			name: "count larger than data",
			data: []byte{0xFF, 0, 0, 0, 1, 2},
			read: func(r *archive.Reader) { r.ReadCount(4) },
			kind: codecerr.KindStructural,
			at:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := archive.NewReader(tt.data, newContext())
			tt.read(r)
			var ce *codecerr.Error
			require.True(t, errors.As(r.Err(), &ce))
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.at, ce.Offset)
		})
	}
}

func TestReaderStickyError(t *testing.T) {
	t.Parallel()

	r := archive.NewReader([]byte{1}, newContext())
	r.ReadUint32()
	first := r.Err()
	require.Error(t, first)
	assert.Zero(t, r.ReadUint8())
	assert.Same(t, first, r.Err())
}

func TestWindow(t *testing.T) {
	t.Parallel()

	r := archive.NewReader([]byte{0, 1, 2, 3, 4, 5}, newContext())
	w := r.Window(2, 4)
	assert.Equal(t, int64(2), w.Position())
	assert.Equal(t, uint8(2), w.ReadUint8())
	assert.Equal(t, uint8(3), w.ReadUint8())
	require.NoError(t, w.Err())
	w.ReadUint8()
	require.ErrorIs(t, w.Err(), codecerr.ErrStructural)

	bad := r.Window(4, 10)
	require.ErrorIs(t, bad.Err(), codecerr.ErrStructural)
}

func TestWriterOverwrite(t *testing.T) {
	t.Parallel()

	w := archive.NewWriter(newContext())
	w.WriteUint32(0)
	w.WriteUint32(7)
	w.SetPosition(0)
	w.WriteUint32(42)
	assert.Equal(t, int64(4), w.Position())
	assert.Equal(t, []byte{42, 0, 0, 0, 7, 0, 0, 0}, w.Bytes())

	w.SetPosition(100)
	require.ErrorIs(t, w.Err(), codecerr.ErrStructural)
}

func TestCheckedWriter(t *testing.T) {
	t.Parallel()

	ctx := newContext()
	inner := archive.NewWriter(ctx)
	w := archive.NewCheckedWriter(inner)

	w.WriteFName(types.FName{Index: 1})
	require.NoError(t, w.Err())
	assert.Equal(t, int64(8), w.Position())
	assert.Equal(t, version.LatestObjectVersion, w.ObjectVersion())

	w.WriteFName(types.FName{Index: 5})
	require.ErrorIs(t, w.Err(), codecerr.ErrUnresolvedReference)
	require.ErrorIs(t, inner.Err(), codecerr.ErrUnresolvedReference)
	assert.Equal(t, int64(8), inner.Len())
}
