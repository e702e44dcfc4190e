package uasset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/uasset"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/internal/testutil"
	"github.com/meigma/uasset/version"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	mappings, err := testutil.SampleSchema().MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Game.usmap"), mappings, 0o644))
	t.Setenv("UASSET_TEST_GAME_DIR", dir)

	path := filepath.Join(dir, "uasset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine_version: "4.27"
mappings: ${UASSET_TEST_GAME_DIR}/Game.usmap
max_asset_size: 1048576
overrides:
  map_key:
    Inventory: ItemId
  array_struct:
    Waypoints: Vector
`), 0o644))

	cfg, err := uasset.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, version.UE4_27, cfg.EngineVersion)
	assert.Equal(t, filepath.Join(dir, "Game.usmap"), cfg.Mappings)
	require.NotNil(t, cfg.MaxAssetSize)
	assert.Equal(t, uint64(1<<20), *cfg.MaxAssetSize)
	assert.Equal(t, map[string]string{"Inventory": "ItemId"}, cfg.Overrides.MapKey)
	assert.Equal(t, map[string]string{"Waypoints": "Vector"}, cfg.Overrides.ArrayStruct)

	opts, err := cfg.Options()
	require.NoError(t, err)

	data, err := testutil.UnversionedAsset(t, version.UE4_27).Encode()
	require.NoError(t, err)
	a, err := uasset.Decode(data, opts...)
	require.NoError(t, err)
	assert.Equal(t, version.UE4_27, a.EngineVersion())
	assert.NotNil(t, a.Schema())
	e, _ := a.Export(1)
	assert.IsType(t, &exports.NormalExport{}, e)

	structType, ok := a.Overrides().MapKeyStruct("Inventory")
	require.True(t, ok)
	assert.Equal(t, "ItemId", structType)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := uasset.LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("engine_version: UE9_9\n"), 0o644))
	_, err = uasset.LoadConfig(bad)
	require.Error(t, err)

	cfg := &uasset.Config{Mappings: filepath.Join(dir, "missing.usmap")}
	_, err = cfg.Options()
	require.Error(t, err)
}
