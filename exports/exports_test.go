package exports_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/properties"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/version"
)

// newContext returns a context whose imports are the given class names, in
// order, so class i is types.ImportIndex(i).
func newContext(ue4 version.ObjectVersion, classes ...string) *archive.Static {
	ctx := archive.NewStatic(ue4)
	ctx.Names.Intern("None")
	for _, c := range classes {
		ctx.Imports = append(ctx.Imports, types.Import{ObjectName: ctx.Names.Name(c)})
	}
	return ctx
}

// withModernFields records the custom versions of engines that serialize
// child properties and no longer chain fields.
func withModernFields(ctx *archive.Static) *archive.Static {
	ctx.Custom.Set(version.CoreObjectVersion, version.CoreFProperties)
	ctx.Custom.Set(version.FrameworkObjectVersion, version.FrameworkRemoveUFieldNext)
	ctx.Custom.Set(version.ReleaseObjectVersion, version.ReleasePropertiesSerializeRepCondition)
	return ctx
}

func encode(t *testing.T, ctx archive.Context, e exports.Export) []byte {
	t.Helper()
	w := archive.NewWriter(ctx)
	require.NoError(t, exports.WritePayload(w, e))
	return append([]byte(nil), w.Bytes()...)
}

func decode(t *testing.T, d *exports.Decoder, ctx archive.Context, b exports.BaseExport, data []byte) exports.Export {
	t.Helper()
	b.SerialOffset, b.SerialSize = 0, int64(len(data))
	e, err := d.Decode(archive.NewReader(data, ctx), b)
	require.NoError(t, err)
	return e
}

// roundTrip encodes want, decodes it back and checks that re-encoding is
// byte identical. want's serial fields are updated to match.
func roundTrip(t *testing.T, ctx archive.Context, want exports.Export) exports.Export {
	t.Helper()
	data := encode(t, ctx, want)
	want.Base().SerialOffset, want.Base().SerialSize = 0, int64(len(data))

	got := decode(t, exports.NewDecoder(), ctx, *want.Base(), data)
	assert.Equal(t, data, encode(t, ctx, got))
	return got
}

func captureLogs() (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	return &buf, slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestEntryRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ue4   version.ObjectVersion
		ue5   version.ObjectVersionUE5
		entry exports.BaseExport
	}{
		{
			name: "32-bit serial fields",
			ue4:  version.NameHashesSerialized,
			entry: exports.BaseExport{
				ClassIndex:   types.ImportIndex(0),
				OuterIndex:   types.ExportIndex(0),
				ObjectFlags:  0x8,
				SerialSize:   120,
				SerialOffset: 900,
				PackageGUID:  types.GUIDFromParts(1, 2, 3, 4),
				IsAsset:      true,
			},
		},
		{
			name: "UE4 latest",
			ue4:  version.LatestObjectVersion,
			entry: exports.BaseExport{
				ClassIndex:                     types.ImportIndex(2),
				SuperIndex:                     types.ImportIndex(3),
				TemplateIndex:                  types.ImportIndex(4),
				SerialSize:                     1 << 33,
				SerialOffset:                   1 << 34,
				NotForServer:                   true,
				PackageFlags:                   0x40,
				NotAlwaysLoadedForEditorGame:   true,
				FirstExportDependency:          -1,
				CreateBeforeCreateDependencies: 2,
			},
		},
		{
			name: "UE5 latest",
			ue4:  version.LatestObjectVersion,
			ue5:  version.LatestObjectVersionUE5,
			entry: exports.BaseExport{
				ClassIndex:                            types.ImportIndex(1),
				SerialSize:                            64,
				SerialOffset:                          2048,
				ForcedExport:                          true,
				IsInheritedInstance:                   true,
				GeneratePublicHash:                    true,
				SerializationBeforeCreateDependencies: 5,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := newContext(tt.ue4)
			ctx.UE5 = tt.ue5
			tt.entry.ObjectName = ctx.Names.Name("Thing")

			w := archive.NewWriter(ctx)
			tt.entry.WriteEntry(w)
			require.NoError(t, w.Err())

			r := archive.NewReader(w.Bytes(), ctx)
			got := exports.ReadEntry(r)
			require.NoError(t, r.Err())
			assert.Zero(t, r.Remaining())
			assert.Equal(t, tt.entry, got)
		})
	}
}

func TestEntrySerialSizeOverflow(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.Export64BitSerialSizes - 1)
	b := exports.BaseExport{ObjectName: ctx.Names.Name("Big"), SerialSize: 1 << 32}
	w := archive.NewWriter(ctx)
	b.WriteEntry(w)
	assert.ErrorIs(t, w.Err(), codecerr.ErrEncodeSizeMismatch)
}

func TestEntryNegativeSerialSize(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	b := exports.BaseExport{ObjectName: ctx.Names.Name("Bad"), SerialSize: -4}
	w := archive.NewWriter(ctx)
	b.WriteEntry(w)
	require.NoError(t, w.Err())

	r := archive.NewReader(w.Bytes(), ctx)
	exports.ReadEntry(r)
	assert.Equal(t, codecerr.KindStructural, codecerr.KindOf(r.Err()))
}

func TestNormalExport(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "Actor")
	g := types.GUIDFromParts(5, 6, 7, 8)
	want := &exports.NormalExport{
		BaseExport: exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("Actor_0")},
		Properties: &properties.List{Properties: []*properties.Property{
			properties.New(ctx.Names, "Count", &properties.IntValue{Value: 3}),
		}},
		GUIDSerialized: true,
		ObjectGUID:     &g,
	}

	got := roundTrip(t, ctx, want)
	require.IsType(t, &exports.NormalExport{}, got)
	assert.Equal(t, want, got)
	require.NotNil(t, got.Normal())
	_, ok := got.Normal().Properties.Find("Count")
	assert.True(t, ok)
}

func TestClassDefaultObjectHasNoGUID(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "Actor")
	want := &exports.NormalExport{
		BaseExport: exports.BaseExport{
			ClassIndex:  types.ImportIndex(0),
			ObjectName:  ctx.Names.Name("Default__Actor"),
			ObjectFlags: exports.FlagClassDefaultObject,
			Extras:      []byte{1, 0, 0, 0, 9, 9, 9, 9},
		},
		Properties: &properties.List{},
	}

	got := roundTrip(t, ctx, want)
	assert.Equal(t, want, got)
	assert.False(t, got.Normal().GUIDSerialized)
	assert.Equal(t, []byte{1, 0, 0, 0, 9, 9, 9, 9}, got.Base().Extras)
}

func TestUnresolvableClassKeepsRawPayload(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	buf, logger := captureLogs()

	b := exports.BaseExport{ClassIndex: types.ImportIndex(5), ObjectName: ctx.Names.Name("Orphan")}
	e := decode(t, exports.NewDecoder(exports.WithLogger(logger)), ctx, b, data)

	raw, ok := e.(*exports.RawExport)
	require.True(t, ok)
	assert.Nil(t, raw.Normal())
	assert.Equal(t, data, raw.Data)
	assert.Len(t, raw.Data, int(raw.SerialSize))
	assert.Contains(t, buf.String(), "export kept as raw bytes")
	assert.Contains(t, buf.String(), "Orphan")
	assert.Equal(t, data, encode(t, ctx, e))
}

func TestUndecodablePayloadKeepsRawPayload(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "Actor")
	w := archive.NewWriter(ctx)
	w.WriteFName(ctx.Names.Name("Count"))
	w.WriteFName(ctx.Names.Name("IntProperty"))
	w.WriteInt32(400)
	w.WriteInt32(0)
	w.WriteUint8(0)
	w.WriteInt32(7)
	data := append([]byte(nil), w.Bytes()...)

	buf, logger := captureLogs()
	b := exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("Broken")}
	e := decode(t, exports.NewDecoder(exports.WithLogger(logger)), ctx, b, data)

	raw, ok := e.(*exports.RawExport)
	require.True(t, ok)
	assert.Equal(t, data, raw.Data)
	assert.Contains(t, buf.String(), "structural")
}

func TestPayloadOutsidePackage(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "Actor")
	b := exports.BaseExport{
		ClassIndex:   types.ImportIndex(0),
		ObjectName:   ctx.Names.Name("Far"),
		SerialOffset: 10,
		SerialSize:   10,
	}
	_, err := exports.NewDecoder().Decode(archive.NewReader(make([]byte, 12), ctx), b)
	require.Error(t, err)
	assert.Equal(t, codecerr.KindStructural, codecerr.KindOf(err))
}

func TestRawPayloadsOption(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "Actor")
	n := &exports.NormalExport{
		BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("A")},
		Properties:     &properties.List{},
		GUIDSerialized: true,
	}
	data := encode(t, ctx, n)

	e := decode(t, exports.NewDecoder(exports.WithRawPayloads()), ctx, n.BaseExport, data)
	raw, ok := e.(*exports.RawExport)
	require.True(t, ok)
	assert.Equal(t, data, raw.Data)
}

func TestHeaderOnlyExport(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	e := exports.Header(exports.BaseExport{SerialSize: 40})
	assert.Nil(t, e.Normal())
	assert.Empty(t, encode(t, ctx, e))
}

func TestFunctionExport(t *testing.T) {
	t.Parallel()

	ctx := withModernFields(newContext(version.LatestObjectVersion, "Function"))
	nm := ctx.Names
	want := &exports.FunctionExport{
		StructExport: exports.StructExport{
			NormalExport: exports.NormalExport{
				BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: nm.Name("ExecuteUbergraph")},
				Properties:     &properties.List{},
				GUIDSerialized: true,
			},
			SuperStruct: types.ImportIndex(0),
			Children:    []types.PackageIndex{types.ExportIndex(3)},
			ChildProperties: []*exports.FProperty{
				{
					Type:          nm.Name("ArrayProperty"),
					Name:          nm.Name("Targets"),
					ArrayDim:      1,
					ElementSize:   16,
					PropertyFlags: 0x80,
					RepNotifyFunc: nm.Name("None"),
					MetaData:      []exports.MetaData{{Key: nm.Name("Category"), Value: types.NewFString("Combat")}},
					Children: []*exports.FProperty{{
						Type:          nm.Name("IntProperty"),
						Name:          nm.Name("Targets"),
						ArrayDim:      1,
						ElementSize:   4,
						RepNotifyFunc: nm.Name("None"),
					}},
				},
				{
					Type:          nm.Name("BoolProperty"),
					Name:          nm.Name("bReady"),
					ArrayDim:      1,
					ElementSize:   1,
					RepNotifyFunc: nm.Name("None"),
					Bool:          &exports.BoolLayout{FieldSize: 1, ByteMask: 1, FieldMask: 0xFF, NativeBool: 1, Value: 1},
				},
				{
					Type:          nm.Name("EnumProperty"),
					Name:          nm.Name("Mode"),
					ArrayDim:      1,
					ElementSize:   1,
					RepNotifyFunc: nm.Name("None"),
					References:    []types.PackageIndex{types.ImportIndex(0)},
					Children: []*exports.FProperty{{
						Type:          nm.Name("ByteProperty"),
						Name:          nm.Name("UnderlyingType"),
						ArrayDim:      1,
						ElementSize:   1,
						RepNotifyFunc: nm.Name("None"),
						References:    []types.PackageIndex{0},
					}},
				},
				{
					Type:          nm.Name("FieldPathProperty"),
					Name:          nm.Name("Path"),
					ArrayDim:      1,
					ElementSize:   32,
					RepNotifyFunc: nm.Name("None"),
					FieldClass:    nm.Name("IntProperty"),
				},
			},
			BytecodeSize: 12,
			Bytecode:     []byte{0x0B, 0x53, 0, 0, 0},
		},
		FunctionFlags:        0x40 | 0x1,
		RepOffset:            7,
		EventGraphFunction:   types.ExportIndex(1),
		EventGraphCallOffset: 44,
	}

	got := roundTrip(t, ctx, want)
	require.IsType(t, &exports.FunctionExport{}, got)
	assert.Equal(t, want, got)

	s, ok := got.(exports.Structured)
	require.True(t, ok)
	assert.Len(t, s.Struct().ChildProperties, 4)
}

func TestLegacyScriptStruct(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "ScriptStruct")
	want := &exports.ScriptStructExport{
		StructExport: exports.StructExport{
			NormalExport: exports.NormalExport{
				BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("Row")},
				Properties:     &properties.List{},
				GUIDSerialized: true,
			},
			Field:    exports.Field{Next: types.ExportIndex(4)},
			Children: []types.PackageIndex{types.ExportIndex(2)},
		},
		StructFlags: 0x201,
	}

	got := roundTrip(t, ctx, want)
	assert.Equal(t, want, got)
}

func TestClassExport(t *testing.T) {
	t.Parallel()

	ctx := withModernFields(newContext(version.LatestObjectVersion, "BlueprintGeneratedClass"))
	nm := ctx.Names
	want := &exports.ClassExport{
		StructExport: exports.StructExport{
			NormalExport: exports.NormalExport{
				BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: nm.Name("BP_Door_C")},
				Properties:     &properties.List{},
				GUIDSerialized: true,
			},
			Children: []types.PackageIndex{types.ExportIndex(1), types.ExportIndex(2)},
		},
		FuncMap:            []exports.FuncMapEntry{{Name: nm.Name("Open"), Function: types.ExportIndex(1)}},
		ClassFlags:         0x1,
		ClassConfigName:    nm.Name("Engine"),
		ClassGeneratedBy:   types.ImportIndex(0),
		Interfaces:         []exports.Interface{{Class: types.ImportIndex(0), PointerOffset: 0, ImplementedByK2: true}},
		Terminator:         nm.Name("None"),
		Cooked:             true,
		ClassDefaultObject: types.ExportIndex(3),
	}

	got := roundTrip(t, ctx, want)
	assert.Equal(t, want, got)
}

func TestEnumExport(t *testing.T) {
	t.Parallel()

	t.Run("values", func(t *testing.T) {
		t.Parallel()

		ctx := withModernFields(newContext(version.LatestObjectVersion, "UserDefinedEnum"))
		want := &exports.EnumExport{
			NormalExport: exports.NormalExport{
				BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("EColor")},
				Properties:     &properties.List{},
				GUIDSerialized: true,
			},
			Entries: []exports.EnumEntry{
				{Name: ctx.Names.Name("EColor::Red"), Value: 0},
				{Name: ctx.Names.Name("EColor::Blue"), Value: 4},
			},
			CppForm: 2,
		}
		assert.Equal(t, want, roundTrip(t, ctx, want))
	})

	t.Run("names only", func(t *testing.T) {
		t.Parallel()

		ctx := newContext(version.TightlyPackedEnums-1, "Enum")
		want := &exports.EnumExport{
			NormalExport: exports.NormalExport{
				BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("EOld")},
				Properties:     &properties.List{},
				GUIDSerialized: true,
			},
			Field: exports.Field{Next: types.ExportIndex(9)},
			Entries: []exports.EnumEntry{
				{Name: ctx.Names.Name("A"), Value: 0},
				{Name: ctx.Names.Name("B"), Value: 1},
			},
			CppForm: 1,
		}
		assert.Equal(t, want, roundTrip(t, ctx, want))
	})
}

func TestPropertyExport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		prop exports.UProperty
	}{
		{"IntProperty", exports.UProperty{ArrayDim: 1}},
		{"ArrayProperty", exports.UProperty{ArrayDim: 1, References: []types.PackageIndex{types.ExportIndex(2)}}},
		{"MapProperty", exports.UProperty{ArrayDim: 1, References: []types.PackageIndex{types.ExportIndex(2), types.ExportIndex(3)}}},
		{"ClassProperty", exports.UProperty{ArrayDim: 1, References: []types.PackageIndex{types.ImportIndex(0), types.ImportIndex(0)}}},
		{"BoolProperty", exports.UProperty{ArrayDim: 1, BoolSize: 1, NativeBool: 1, RepCondition: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()

			ctx := newContext(version.LatestObjectVersion, tt.kind)
			ctx.Custom.Set(version.ReleaseObjectVersion, version.ReleasePropertiesSerializeRepCondition)
			tt.prop.RepNotifyFunc = ctx.Names.Name("None")
			tt.prop.Field = exports.Field{Next: types.ExportIndex(5)}
			want := &exports.PropertyExport{
				NormalExport: exports.NormalExport{
					BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("Health")},
					Properties:     &properties.List{},
					GUIDSerialized: true,
				},
				Kind:     tt.kind,
				Property: tt.prop,
			}
			assert.Equal(t, want, roundTrip(t, ctx, want))
		})
	}
}

func TestUnknownPropertyExportKeepsRawPayload(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "FancyProperty")
	n := &exports.NormalExport{
		BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("Odd")},
		Properties:     &properties.List{},
		GUIDSerialized: true,
	}
	data := append(encode(t, ctx, n), make([]byte, 24)...)

	buf, logger := captureLogs()
	e := decode(t, exports.NewDecoder(exports.WithLogger(logger)), ctx, n.BaseExport, data)
	require.IsType(t, &exports.RawExport{}, e)
	assert.Contains(t, buf.String(), "FancyProperty")
}

func TestStringTableExport(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "StringTable")
	want := &exports.StringTableExport{
		NormalExport: exports.NormalExport{
			BaseExport:     exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: ctx.Names.Name("ST_UI")},
			Properties:     &properties.List{},
			GUIDSerialized: true,
		},
		Namespace: types.NewFString("UI"),
		Entries: []exports.StringTableEntry{
			{Key: types.NewFString("Start"), Value: types.NewFString("Démarrer")},
			{Key: types.NewFString("Quit"), Value: types.NewFString("Quit")},
		},
	}
	assert.Equal(t, want, roundTrip(t, ctx, want))
}

func TestDataTableExport(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion, "DataTable", "ItemRow")
	nm := ctx.Names
	want := &exports.DataTableExport{
		NormalExport: exports.NormalExport{
			BaseExport: exports.BaseExport{ClassIndex: types.ImportIndex(0), ObjectName: nm.Name("DT_Items")},
			Properties: &properties.List{Properties: []*properties.Property{
				properties.New(nm, "RowStruct", &properties.ObjectValue{Kind: "ObjectProperty", Value: types.ImportIndex(1)}),
			}},
			GUIDSerialized: true,
		},
		RowStruct: "ItemRow",
		Rows: []exports.DataTableRow{
			{Name: nm.Name("Sword"), Properties: &properties.List{Properties: []*properties.Property{
				properties.New(nm, "Damage", &properties.IntValue{Value: 12}),
			}}},
			{Name: nm.Name("Shield"), Properties: &properties.List{}},
		},
	}
	assert.Equal(t, want, roundTrip(t, ctx, want))
}
