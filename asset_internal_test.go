package uasset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "exports_read", StateExportsRead.String())
	assert.Equal(t, "decoded", StateDecoded.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	a := newAsset(nil)
	for s := StateHeaderRead; s <= StateDecoded; s++ {
		a.advance(s)
		assert.Equal(t, s, a.State())
	}
	assert.Panics(t, func() { a.advance(StateHeaderRead) })

	fresh := newAsset(nil)
	assert.Panics(t, func() { fresh.advance(StateNamesRead) })
}

func TestEncodeRequiresDecodedState(t *testing.T) {
	t.Parallel()

	a := newAsset(nil)
	a.advance(StateHeaderRead)
	_, err := a.Encode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header_read")
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		engine version.EngineVersion
		legacy int32
	}{
		{version.UE4_27, -7},
		{version.UE5_1, LegacyFileVersionNewest},
	}
	for _, tt := range tests {
		t.Run(tt.engine.String(), func(t *testing.T) {
			t.Parallel()

			a := New(WithEngineVersion(tt.engine))
			s := a.Summary()
			assert.Equal(t, tt.legacy, s.LegacyFileVersion)
			assert.Equal(t, tt.engine.ObjectVersion(), s.FileVersionUE4)
			assert.Equal(t, tt.engine.ObjectVersion(), a.ObjectVersion())
			assert.Equal(t, tt.engine.ObjectVersionUE5(), a.ObjectVersionUE5())
			assert.True(t, a.FilterEditorOnly())
			assert.False(t, a.UnversionedProperties())
			assert.Equal(t, version.DefaultCustomVersions(tt.engine).All(), a.CustomVersions().All())
			assert.Equal(t, StateDecoded, a.State())
		})
	}

	assert.Equal(t, version.LatestEngineVersion, New().EngineVersion())
}

func TestSetVersions(t *testing.T) {
	t.Parallel()

	s := &Summary{FileVersionUE4: version.Unversioned}
	err := s.setVersions(version.EngineUnknown)
	require.ErrorIs(t, err, ErrUnversioned)

	require.NoError(t, s.setVersions(version.UE4_26))
	assert.Equal(t, version.UE4_26.ObjectVersion(), s.ue4)

	versioned := &Summary{FileVersionUE4: version.LatestObjectVersion}
	require.NoError(t, versioned.setVersions(version.UE4_0))
	assert.Equal(t, version.LatestObjectVersion, versioned.ue4)
}

func TestSectionOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int32(0), sectionOffset(0, 120, true))
	assert.Equal(t, int32(120), sectionOffset(64, 120, true))
	assert.Equal(t, int32(120), sectionOffset(0, 120, false))
}

func TestAddExportTracksDepends(t *testing.T) {
	t.Parallel()

	a := New()
	a.AddImport(types.Import{})
	idx := a.AddExport(nil)
	assert.Equal(t, types.ExportIndex(0), idx)
	assert.Len(t, a.Depends(), 1)
}
