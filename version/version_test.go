package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/uasset/types"
)

func TestCustomVersions(t *testing.T) {
	t.Parallel()

	cv := NewCustomVersions()
	_, ok := cv.Get(CoreObjectVersion)
	assert.False(t, ok, "missing key is not present")

	cv.Set(CoreObjectVersion, 3)
	cv.Set(EditorObjectVersion, 30)
	v, ok := cv.Get(CoreObjectVersion)
	require.True(t, ok)
	assert.Equal(t, int32(3), v)

	cv.Set(CoreObjectVersion, 4)
	v, _ = cv.Get(CoreObjectVersion)
	assert.Equal(t, int32(4), v, "set overwrites")
	require.Equal(t, 2, cv.Len())
	assert.Equal(t, CoreObjectVersion, cv.All()[0].Key, "overwrite keeps order")

	clone := cv.Clone()
	clone.Set(CoreObjectVersion, 9)
	v, _ = cv.Get(CoreObjectVersion)
	assert.Equal(t, int32(4), v, "clone is independent")
}

func TestCustomVersionsNil(t *testing.T) {
	t.Parallel()

	var cv *CustomVersions
	_, ok := cv.Get(CoreObjectVersion)
	assert.False(t, ok)
	assert.Equal(t, 0, cv.Len())
	assert.Empty(t, cv.All())
}

func TestCustomVersionName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FCoreObjectVersion", CustomVersion{Key: CoreObjectVersion}.Name())
	assert.Equal(t, "Mine", CustomVersion{Key: types.GUID{1}, FriendlyName: types.NewFString("Mine")}.Name())
}

func TestDefaultCustomVersions(t *testing.T) {
	t.Parallel()

	old := DefaultCustomVersions(UE4_14)
	_, ok := old.Get(ReleaseObjectVersion)
	assert.False(t, ok)
	v, ok := old.Get(CoreObjectVersion)
	require.True(t, ok)
	assert.Less(t, v, CoreFProperties)

	ue425 := DefaultCustomVersions(UE4_25)
	v, _ = ue425.Get(CoreObjectVersion)
	assert.GreaterOrEqual(t, v, CoreFProperties)
	v, _ = ue425.Get(FrameworkObjectVersion)
	assert.GreaterOrEqual(t, v, FrameworkRemoveUFieldNext)

	ue424 := DefaultCustomVersions(UE4_24)
	v, _ = ue424.Get(FrameworkObjectVersion)
	assert.Less(t, v, FrameworkRemoveUFieldNext)

	assert.Equal(t, 0, DefaultCustomVersions(EngineUnknown).Len())
}

func TestEngineVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "UE4_27", UE4_27.String())
	assert.Equal(t, "UE5_1", UE5_1.String())
	assert.Equal(t, "Unknown", EngineUnknown.String())
	assert.Equal(t, LatestObjectVersion, UE4_27.ObjectVersion())
	assert.Equal(t, UE5LargeWorldCoordinates, UE5_0.ObjectVersionUE5())
	assert.Equal(t, UE5Unversioned, UE4_27.ObjectVersionUE5())
	assert.Equal(t, Unversioned, EngineUnknown.ObjectVersion())

	tests := []struct {
		in   string
		want EngineVersion
	}{
		{"UE4_27", UE4_27},
		{"ue5.1", UE5_1},
		{"4.26", UE4_26},
		{" UE4_0 ", UE4_0},
		{"unknown", EngineUnknown},
	}
	for _, tt := range tests {
		got, err := ParseEngineVersion(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseEngineVersion("UE9_9")
	assert.Error(t, err)

	var e EngineVersion
	require.NoError(t, e.UnmarshalText([]byte("UE4_25")))
	assert.Equal(t, UE4_25, e)
	text, err := e.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "UE4_25", string(text))
}
