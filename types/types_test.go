package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		index    PackageIndex
		null     bool
		isImport bool
		isExport bool
		slot     int
	}{
		{"null", 0, true, false, false, 0},
		{"first export", 1, false, false, true, 0},
		{"third export", 3, false, false, true, 2},
		{"first import", -1, false, true, false, 0},
		{"fifth import", -5, false, true, false, 4},
		{"lowest import", math.MinInt32, false, true, false, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.null, tt.index.IsNull())
			assert.Equal(t, tt.isImport, tt.index.IsImport())
			assert.Equal(t, tt.isExport, tt.index.IsExport())
			switch {
			case tt.isImport:
				assert.Equal(t, tt.slot, tt.index.Import())
				assert.Equal(t, tt.index, ImportIndex(tt.slot))
			case tt.isExport:
				assert.Equal(t, tt.slot, tt.index.Export())
				assert.Equal(t, tt.index, ExportIndex(tt.slot))
			}
		})
	}
}

func TestFNameFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Cube", FName{Index: 3}.Format("Cube"))
	assert.Equal(t, "Cube_0", FName{Index: 3, Number: 1}.Format("Cube"))
	assert.Equal(t, "Cube_11", FName{Index: 3, Number: 12}.Format("Cube"))
	assert.Equal(t, FName{Index: 1, Number: 2}, FName{Index: 1, Number: 2})
	assert.NotEqual(t, FName{Index: 1, Number: 2}, FName{Index: 1, Number: 3})
}

func TestGUID(t *testing.T) {
	t.Parallel()

	g := GUIDFromParts(0x375EC13C, 0x06E448FB, 0xB50084F0, 0x262A717E)
	assert.Equal(t, "375EC13C-06E448FB-B50084F0-262A717E", g.String())
	assert.Equal(t, byte(0x3C), g[0], "components are little-endian")

	parsed, err := ParseGUID(g.String())
	require.NoError(t, err)
	assert.Equal(t, g, parsed)

	viaUUID, err := ParseGUID(g.UUID().String())
	require.NoError(t, err)
	assert.Equal(t, g, viaUUID)

	_, err = ParseGUID("not-a-guid")
	assert.Error(t, err)

	assert.True(t, GUID{}.IsZero())
	assert.False(t, NewGUID().IsZero())
}

func TestNewFString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, EncodingNarrow, NewFString("Hello").Encoding)
	assert.Equal(t, EncodingUTF16, NewFString("héllo").Encoding)
	assert.True(t, NullFString().Null)
	assert.False(t, NewFString("").Null)
}
