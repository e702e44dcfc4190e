package properties_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/properties"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

func newContext(ue4 version.ObjectVersion) *archive.Static {
	ctx := archive.NewStatic(ue4)
	ctx.Names.Intern("None")
	return ctx
}

// roundTrip encodes l, decodes the result and checks that re-encoding the
// decoded list reproduces the same bytes.
func roundTrip(t *testing.T, ctx archive.Context, l *properties.List, owner string) *properties.List {
	t.Helper()

	w := archive.NewWriter(ctx)
	require.NoError(t, l.Write(w))

	r := archive.NewReader(w.Bytes(), ctx)
	got, err := properties.NewDecoder().ReadList(r, owner)
	require.NoError(t, err)
	assert.Zero(t, r.Remaining())

	again := archive.NewWriter(ctx)
	require.NoError(t, got.Write(again))
	assert.Equal(t, w.Bytes(), again.Bytes())
	return got
}

func TestGuidPropertyWithoutGUIDFeature(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.PropertyGUIDInPropertyTag - 1)
	nm := ctx.Names
	w := archive.NewWriter(ctx)
	w.WriteFName(nm.Name("MyGuid"))
	w.WriteFName(nm.Name("GuidProperty"))
	w.WriteInt32(16)
	w.WriteInt32(0)
	w.WriteBytes(make([]byte, 16))
	w.WriteFName(nm.Name("None"))
	data := append([]byte(nil), w.Bytes()...)

	r := archive.NewReader(data, ctx)
	l, err := properties.NewDecoder().ReadList(r, "Object")
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())

	p := l.Properties[0]
	assert.Equal(t, "MyGuid", p.Label)
	assert.Nil(t, p.GUID)
	assert.Equal(t, &properties.GuidValue{}, p.Value)

	out := archive.NewWriter(ctx)
	require.NoError(t, l.Write(out))
	assert.Equal(t, data, out.Bytes())
}

func TestPropertyGUID(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	g := types.GUIDFromParts(1, 2, 3, 4)
	p := properties.New(ctx.Names, "Count", &properties.IntValue{Value: 3})
	p.GUID = &g

	got := roundTrip(t, ctx, &properties.List{Properties: []*properties.Property{p}}, "Object")
	require.Equal(t, 1, got.Len())
	require.NotNil(t, got.Properties[0].GUID)
	assert.Equal(t, g, *got.Properties[0].GUID)
}

func TestTaggedRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	l := &properties.List{Properties: []*properties.Property{
		properties.New(nm, "Enabled", &properties.BoolValue{Value: true}),
		properties.New(nm, "Small", &properties.Int8Value{Value: -3}),
		properties.New(nm, "Short", &properties.Int16Value{Value: -300}),
		properties.New(nm, "Count", &properties.IntValue{Value: 42}),
		properties.New(nm, "Big", &properties.Int64Value{Value: -1 << 40}),
		properties.New(nm, "Port", &properties.UInt16Value{Value: 8080}),
		properties.New(nm, "Mask", &properties.UInt32Value{Value: 0xF0F0}),
		properties.New(nm, "Id", &properties.UInt64Value{Value: 1 << 50}),
		properties.New(nm, "Speed", &properties.FloatValue{Value: 1.5}),
		properties.New(nm, "Precise", &properties.DoubleValue{Value: -2.25}),
		properties.New(nm, "Raw", &properties.ByteValue{EnumType: properties.NewIdent(nm, "None"), Value: 7}),
		properties.New(nm, "Color", &properties.ByteValue{EnumType: properties.NewIdent(nm, "EColor"), IsName: true, Name: nm.Name("EColor::Red")}),
		properties.New(nm, "Mode", &properties.EnumValue{EnumType: properties.NewIdent(nm, "EMode"), Value: nm.Name("EMode::Fast")}),
		properties.New(nm, "Title", &properties.StrValue{Value: types.NewFString("héllo")}),
		properties.New(nm, "Tag", &properties.NameValue{Value: nm.Name("Tagged")}),
		properties.New(nm, "Owner", &properties.ObjectValue{Kind: "ObjectProperty", Value: types.ImportIndex(0)}),
		properties.New(nm, "Lazy", &properties.LazyObjectValue{Value: types.GUIDFromParts(9, 9, 9, 9)}),
		properties.New(nm, "Mesh", &properties.SoftObjectValue{Kind: "SoftObjectProperty", Value: types.SoftObjectPath{
			AssetName: nm.Name("/Game/Mesh.Mesh"),
			SubPath:   types.NewFString(""),
		}}),
		properties.New(nm, "OnHit", &properties.DelegateValue{Value: properties.Delegate{Object: 1, Function: nm.Name("Hit")}}),
		properties.New(nm, "OnDone", &properties.MulticastDelegateValue{Kind: "MulticastInlineDelegateProperty", Delegates: []properties.Delegate{
			{Object: 1, Function: nm.Name("Done")},
		}}),
		properties.New(nm, "Field", &properties.FieldPathValue{Path: []types.FName{nm.Name("Inner")}, Owner: -1}),
		properties.New(nm, "Greeting", &properties.TextValue{
			History:   properties.TextHistoryBase,
			Namespace: types.NewFString("ns"),
			Key:       types.NewFString("key"),
			Source:    types.NewFString("Hello"),
		}),
		properties.New(nm, "Location", &properties.StructValue{StructType: properties.NewIdent(nm, "Vector"), Native: &properties.Vector{X: 1, Y: 2, Z: 3}}),
		properties.New(nm, "Tint", &properties.StructValue{StructType: properties.NewIdent(nm, "Color"), Native: &properties.Color{B: 1, G: 2, R: 3, A: 4}}),
		properties.New(nm, "Nested", &properties.StructValue{StructType: properties.NewIdent(nm, "Custom"), Properties: &properties.List{
			Properties: []*properties.Property{properties.New(nm, "Inner", &properties.IntValue{Value: 5})},
		}}),
		properties.New(nm, "Numbers", &properties.ArrayValue{InnerType: properties.NewIdent(nm, "IntProperty"), Elements: []properties.Value{
			&properties.IntValue{Value: 1},
			&properties.IntValue{Value: 2},
		}}),
		properties.New(nm, "Unique", &properties.SetValue{InnerType: properties.NewIdent(nm, "NameProperty"), Elements: []properties.Value{
			&properties.NameValue{Value: nm.Name("A")},
		}}),
		properties.New(nm, "Lookup", &properties.MapValue{KeyType: properties.NewIdent(nm, "StrProperty"), ValueType: properties.NewIdent(nm, "BoolProperty"), Entries: []properties.MapEntry{
			{Key: &properties.StrValue{Value: types.NewFString("on")}, Value: &properties.BoolValue{Value: true}},
			{Key: &properties.StrValue{Value: types.NewFString("off")}, Value: &properties.BoolValue{}},
		}}),
	}}

	got := roundTrip(t, ctx, l, "Object")
	assert.Equal(t, l.Properties, got.Properties)
}

func TestTypeNamesKeepInstanceNumber(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	item := types.FName{Index: nm.Intern("S_Item"), Number: 3}
	w := archive.NewWriter(ctx)
	w.WriteFName(nm.Name("Loot"))
	w.WriteFName(nm.Name("StructProperty"))
	w.WriteInt32(8)
	w.WriteInt32(0)
	w.WriteFName(item)
	w.WriteGUID(types.GUID{})
	w.WriteBool8(false)
	w.WriteFName(nm.Name("None"))
	w.WriteFName(nm.Name("None"))
	data := append([]byte(nil), w.Bytes()...)
	names := nm.Len()

	l, err := properties.NewDecoder().ReadList(archive.NewReader(data, ctx), "Object")
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	v, ok := l.Properties[0].Value.(*properties.StructValue)
	require.True(t, ok)
	assert.Equal(t, "S_Item_2", v.StructType.String())
	assert.Equal(t, item, v.StructType.FName)

	out := archive.NewWriter(ctx)
	require.NoError(t, l.Write(out))
	assert.Equal(t, data, out.Bytes())
	assert.Equal(t, names, nm.Len())
}

func TestEditedTypeNameIsInterned(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	v := &properties.StructValue{StructType: properties.NewIdent(nm, "Custom"), Properties: &properties.List{}}
	l := &properties.List{Properties: []*properties.Property{properties.New(nm, "Thing", v)}}
	v.StructType.Name = "Renamed"

	got := roundTrip(t, ctx, l, "Object")
	decoded, ok := got.Properties[0].Value.(*properties.StructValue)
	require.True(t, ok)
	assert.Equal(t, "Renamed", decoded.StructType.Name)
}

func TestBoolKeepsSerializedByte(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	w := archive.NewWriter(ctx)
	w.WriteFName(nm.Name("bVisible"))
	w.WriteFName(nm.Name("BoolProperty"))
	w.WriteInt32(0)
	w.WriteInt32(0)
	w.WriteUint8(0x02)
	w.WriteBool8(false)
	w.WriteFName(nm.Name("None"))
	data := append([]byte(nil), w.Bytes()...)

	l, err := properties.NewDecoder().ReadList(archive.NewReader(data, ctx), "Object")
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, &properties.BoolValue{Value: true, Raw: 0x02}, l.Properties[0].Value)

	out := archive.NewWriter(ctx)
	require.NoError(t, l.Write(out))
	assert.Equal(t, data, out.Bytes())

	l.Properties[0].Value.(*properties.BoolValue).Value = false
	out = archive.NewWriter(ctx)
	require.NoError(t, l.Write(out))
	assert.Equal(t, byte(0), out.Bytes()[24])
}

func TestStructArrayInnerTag(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	arr := &properties.ArrayValue{
		InnerType: properties.NewIdent(nm, "StructProperty"),
		InnerTag: &properties.InnerTag{
			Name:       nm.Name("Points"),
			TypeName:   properties.NewIdent(nm, "StructProperty"),
			StructType: properties.NewIdent(nm, "Vector"),
		},
		Elements: []properties.Value{
			&properties.StructValue{StructType: properties.NewIdent(nm, "Vector"), Native: &properties.Vector{X: 1}},
			&properties.StructValue{StructType: properties.NewIdent(nm, "Vector"), Native: &properties.Vector{Y: 2}},
		},
	}
	l := &properties.List{Properties: []*properties.Property{properties.New(nm, "Points", arr)}}

	got := roundTrip(t, ctx, l, "Object")
	assert.Equal(t, l.Properties, got.Properties)
}

func TestMapStructOverrides(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	ctx.Override = &archive.Overrides{MapValue: map[string]string{"Spawns": "Vector"}}
	nm := ctx.Names
	m := &properties.MapValue{KeyType: properties.NewIdent(nm, "NameProperty"), ValueType: properties.NewIdent(nm, "StructProperty"), Entries: []properties.MapEntry{
		{
			Key:   &properties.NameValue{Value: nm.Name("Start")},
			Value: &properties.StructValue{StructType: properties.Ident{Name: "Vector"}, Native: &properties.Vector{X: 4, Y: 5, Z: 6}},
		},
	}}
	generic := &properties.MapValue{KeyType: properties.NewIdent(nm, "IntProperty"), ValueType: properties.NewIdent(nm, "StructProperty"), Entries: []properties.MapEntry{
		{
			Key: &properties.IntValue{Value: 1},
			Value: &properties.StructValue{Properties: &properties.List{Properties: []*properties.Property{
				properties.New(nm, "Weight", &properties.FloatValue{Value: 0.5}),
			}}},
		},
	}}
	l := &properties.List{Properties: []*properties.Property{
		properties.New(nm, "Spawns", m),
		properties.New(nm, "Weights", generic),
	}}

	got := roundTrip(t, ctx, l, "Object")
	assert.Equal(t, l.Properties, got.Properties)
}

func TestEnumByteMapKeys(t *testing.T) {
	t.Parallel()

	schema := unversioned.New()
	schema.AddStruct(unversioned.NewStruct("Thing", "",
		unversioned.Property{Name: "Costs", Type: unversioned.PropertyType{
			Kind:  unversioned.KindMap,
			Inner: &unversioned.PropertyType{Kind: unversioned.KindByte, EnumName: "EColor"},
			Value: &unversioned.PropertyType{Kind: unversioned.KindInt},
		}},
	))
	ctx := newContext(version.LatestObjectVersion)
	ctx.Mappings = schema
	nm := ctx.Names

	costs := &properties.MapValue{
		KeyType:   properties.NewIdent(nm, "ByteProperty"),
		ValueType: properties.NewIdent(nm, "IntProperty"),
		Entries: []properties.MapEntry{
			{Key: &properties.ByteValue{IsName: true, Name: nm.Name("EColor::Red")}, Value: &properties.IntValue{Value: 3}},
			{Key: &properties.ByteValue{IsName: true, Name: nm.Name("EColor::Blue")}, Value: &properties.IntValue{Value: 9}},
		},
	}
	plain := &properties.MapValue{
		KeyType:   properties.NewIdent(nm, "ByteProperty"),
		ValueType: properties.NewIdent(nm, "IntProperty"),
		Entries: []properties.MapEntry{
			{Key: &properties.ByteValue{Value: 4}, Value: &properties.IntValue{Value: 1}},
		},
	}
	l := &properties.List{Properties: []*properties.Property{
		properties.New(nm, "Costs", costs),
		properties.New(nm, "Plain", plain),
	}}

	got := roundTrip(t, ctx, l, "Thing")
	assert.Equal(t, l.Properties, got.Properties)
}

func TestUnknownTypeFallback(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	w := archive.NewWriter(ctx)
	w.WriteFName(nm.Name("Mystery"))
	w.WriteFName(nm.Name("FancyProperty"))
	w.WriteInt32(3)
	w.WriteInt32(0)
	w.WriteBool8(false)
	w.WriteBytes([]byte{1, 2, 3})
	w.WriteFName(nm.Name("Count"))
	w.WriteFName(nm.Name("IntProperty"))
	w.WriteInt32(4)
	w.WriteInt32(0)
	w.WriteBool8(false)
	w.WriteInt32(9)
	w.WriteFName(nm.Name("None"))
	data := append([]byte(nil), w.Bytes()...)

	dec := properties.NewDecoder(properties.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	l, err := dec.ReadList(archive.NewReader(data, ctx), "Object")
	require.NoError(t, err)
	require.Equal(t, 2, l.Len())

	assert.Equal(t, &properties.RawValue{TypeName: "FancyProperty", Data: []byte{1, 2, 3}}, l.Properties[0].Value)
	assert.Equal(t, &properties.IntValue{Value: 9}, l.Properties[1].Value)
	assert.Contains(t, logs.String(), "property kept as raw bytes")
	assert.Contains(t, logs.String(), "FancyProperty")

	out := archive.NewWriter(ctx)
	require.NoError(t, l.Write(out))
	assert.Equal(t, data, out.Bytes())
}

func TestSizeMismatchFallback(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	w := archive.NewWriter(ctx)
	w.WriteFName(nm.Name("Count"))
	w.WriteFName(nm.Name("IntProperty"))
	w.WriteInt32(8)
	w.WriteInt32(0)
	w.WriteBool8(false)
	w.WriteInt64(7)
	w.WriteFName(nm.Name("None"))
	data := append([]byte(nil), w.Bytes()...)

	l, err := properties.NewDecoder().ReadList(archive.NewReader(data, ctx), "Object")
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	raw, ok := l.Properties[0].Value.(*properties.RawValue)
	require.True(t, ok)
	assert.Equal(t, "IntProperty", raw.Type())
	assert.Len(t, raw.Data, 8)

	out := archive.NewWriter(ctx)
	require.NoError(t, l.Write(out))
	assert.Equal(t, data, out.Bytes())
}

func TestTruncatedTagIsFatal(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	nm := ctx.Names
	w := archive.NewWriter(ctx)
	w.WriteFName(nm.Name("Count"))
	w.WriteFName(nm.Name("IntProperty"))
	w.WriteInt32(400)
	w.WriteInt32(0)
	w.WriteBool8(false)
	w.WriteInt32(1)

	_, err := properties.NewDecoder().ReadList(archive.NewReader(w.Bytes(), ctx), "Object")
	require.ErrorIs(t, err, codecerr.ErrStructural)
}

func TestTextCultureInvariantGate(t *testing.T) {
	t.Parallel()

	invariant := types.NewFString("source")
	tests := []struct {
		name    string
		custom  bool
		present bool
	}{
		{name: "editor version present", custom: true, present: true},
		{name: "editor version absent", custom: false, present: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := newContext(version.LatestObjectVersion)
			if tt.custom {
				ctx.Custom.Set(version.EditorObjectVersion, version.EditorCultureInvariantTextKeyStability)
			}
			text := &properties.TextValue{History: properties.TextHistoryNone, CultureInvariant: &invariant}
			l := &properties.List{Properties: []*properties.Property{properties.New(ctx.Names, "Label", text)}}

			w := archive.NewWriter(ctx)
			require.NoError(t, l.Write(w))
			got, err := properties.NewDecoder().ReadList(archive.NewReader(w.Bytes(), ctx), "Object")
			require.NoError(t, err)

			decoded, ok := got.Properties[0].Value.(*properties.TextValue)
			require.True(t, ok)
			if tt.present {
				require.NotNil(t, decoded.CultureInvariant)
				assert.Equal(t, invariant, *decoded.CultureInvariant)
			} else {
				assert.Nil(t, decoded.CultureInvariant)
			}
		})
	}
}

func TestUnknownTextHistoryKeptRaw(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	text := &properties.TextValue{History: 3, Raw: []byte{1, 2, 3, 4}}
	l := &properties.List{Properties: []*properties.Property{properties.New(ctx.Names, "Label", text)}}

	got := roundTrip(t, ctx, l, "Object")
	assert.Equal(t, text, got.Properties[0].Value)
}

func TestRealsFollowLargeWorldCoordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ue5  version.ObjectVersionUE5
		size int
	}{
		{name: "single precision", ue5: version.UE5Initial, size: 12},
		{name: "double precision", ue5: version.UE5LargeWorldCoordinates, size: 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := newContext(version.LatestObjectVersion)
			ctx.UE5 = tt.ue5
			w := archive.NewWriter(ctx)
			v := &properties.StructValue{StructType: properties.NewIdent(ctx.Names, "Vector"), Native: &properties.Vector{X: 1, Y: 2, Z: 3}}
			l := &properties.List{Properties: []*properties.Property{properties.New(ctx.Names, "At", v)}}
			require.NoError(t, l.Write(w))

			r := archive.NewReader(w.Bytes(), ctx)
			r.SetPosition(16)
			assert.Equal(t, int32(tt.size), r.ReadInt32())

			got := roundTrip(t, ctx, l, "Object")
			assert.Equal(t, v, got.Properties[0].Value)
		})
	}
}

func unversionedContext() *archive.Static {
	schema := unversioned.New()
	schema.AddStruct(unversioned.NewStruct("Base", "",
		unversioned.Property{Name: "Health", Type: unversioned.PropertyType{Kind: unversioned.KindFloat}},
	))
	schema.AddStruct(unversioned.NewStruct("Thing", "Base",
		unversioned.Property{Name: "Count", Type: unversioned.PropertyType{Kind: unversioned.KindInt}},
		unversioned.Property{Name: "Label", Type: unversioned.PropertyType{Kind: unversioned.KindStr}},
		unversioned.Property{Name: "Flags", Type: unversioned.PropertyType{Kind: unversioned.KindBool}},
		unversioned.Property{Name: "Mode", Type: unversioned.PropertyType{
			Kind:     unversioned.KindEnum,
			EnumName: "EMode",
			Inner:    &unversioned.PropertyType{Kind: unversioned.KindByte},
		}},
		unversioned.Property{Name: "Points", Type: unversioned.PropertyType{
			Kind:  unversioned.KindArray,
			Inner: &unversioned.PropertyType{Kind: unversioned.KindStruct, StructName: "Vector"},
		}},
		unversioned.Property{Name: "Child", Type: unversioned.PropertyType{Kind: unversioned.KindStruct, StructName: "Base"}},
	))

	ctx := newContext(version.LatestObjectVersion)
	ctx.UE5 = version.LatestObjectVersionUE5
	ctx.Unversioned = true
	ctx.Mappings = schema
	return ctx
}

func TestUnversionedRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := unversionedContext()
	child := &properties.List{
		Header: properties.NewHeader([]int{0}),
		Struct: "Base",
		Properties: []*properties.Property{
			{Label: "Health", Slot: 0, Value: &properties.FloatValue{Value: 10}},
		},
	}
	l := &properties.List{
		Header: properties.NewHeader([]int{0, 2, 3, 4, 5, 6}),
		Struct: "Thing",
		Properties: []*properties.Property{
			{Label: "Count", Slot: 0, Value: &properties.IntValue{Value: 7}},
			{Label: "Flags", Slot: 2, Value: &properties.BoolValue{Value: true}},
			{Label: "Mode", Slot: 3, Value: &properties.EnumValue{
				EnumType:    properties.Ident{Name: "EMode"},
				Unversioned: true,
				Underlying:  unversioned.KindByte,
				Index:       2,
			}},
			{Label: "Points", Slot: 4, Value: &properties.ArrayValue{
				InnerType: properties.Ident{Name: "StructProperty"},
				Elements: []properties.Value{
					&properties.StructValue{StructType: properties.Ident{Name: "Vector"}, Native: &properties.Vector{X: 1, Y: 2, Z: 3}},
				},
			}},
			{Label: "Child", Slot: 5, Value: &properties.StructValue{StructType: properties.Ident{Name: "Base"}, Properties: child}},
			{Label: "Health", Slot: 6, Value: &properties.FloatValue{Value: 1.5}},
		},
	}

	got := roundTrip(t, ctx, l, "Thing")
	assert.Equal(t, l.Header, got.Header)
	assert.Equal(t, l.Properties, got.Properties)
}

func TestUnversionedZeroMask(t *testing.T) {
	t.Parallel()

	ctx := unversionedContext()
	l := &properties.List{
		Header: &properties.Header{
			Fragments: []properties.Fragment{{Values: 3, HasZeroes: true, IsLast: true}},
			ZeroMask:  []byte{0b010},
		},
		Struct: "Thing",
		Properties: []*properties.Property{
			{Label: "Count", Slot: 0, Value: &properties.IntValue{Value: 1}},
			{Label: "Flags", Slot: 2, Value: &properties.BoolValue{Value: true}},
		},
	}

	got := roundTrip(t, ctx, l, "Thing")
	assert.Equal(t, 2, got.Header.ValueCount())
	assert.Equal(t, l.Properties, got.Properties)
}

func TestUnversionedValueCountMismatch(t *testing.T) {
	t.Parallel()

	ctx := unversionedContext()
	l := &properties.List{
		Header: properties.NewHeader([]int{0, 1}),
		Struct: "Thing",
		Properties: []*properties.Property{
			{Label: "Count", Slot: 0, Value: &properties.IntValue{Value: 1}},
		},
	}

	err := l.Write(archive.NewWriter(ctx))
	require.ErrorIs(t, err, codecerr.ErrEncodeSizeMismatch)
}

func TestUnversionedNeedsSchema(t *testing.T) {
	t.Parallel()

	ctx := newContext(version.LatestObjectVersion)
	ctx.Unversioned = true
	r := archive.NewReader([]byte{0x00, 0x01}, ctx)

	_, err := properties.NewDecoder().ReadList(r, "Thing")
	require.ErrorIs(t, err, codecerr.ErrUnknownType)
}

func TestNewHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		slots []int
		want  []properties.Fragment
	}{
		{
			name:  "empty",
			slots: nil,
			want:  []properties.Fragment{{IsLast: true}},
		},
		{
			name:  "runs",
			slots: []int{0, 1, 4},
			want:  []properties.Fragment{{Values: 2}, {Skip: 2, Values: 1, IsLast: true}},
		},
		{
			name:  "long skip",
			slots: []int{200},
			want:  []properties.Fragment{{Skip: 127}, {Skip: 73, Values: 1, IsLast: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := properties.NewHeader(tt.slots)
			assert.Equal(t, tt.want, h.Fragments)

			var got []int
			for s := range h.Slots() {
				got = append(got, s)
			}
			assert.Equal(t, tt.slots, got)
		})
	}
}
