package testutil

import (
	"testing"

	"github.com/meigma/uasset"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/names"
	"github.com/meigma/uasset/properties"
	"github.com/meigma/uasset/types"
	"github.com/meigma/uasset/unversioned"
	"github.com/meigma/uasset/version"
)

// OrphanPayload is the payload of the sample export whose class does not
// resolve.
var OrphanPayload = []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x2A}

// Sample export positions, 1-based as accepted by Asset.Export.
const (
	SampleHero = iota + 1
	SampleHeroDefaults
	SampleJump
	SampleState
	SampleStrings
	SampleItems
	SampleOrphan
	SampleHeroClass
)

// SampleAsset builds an encodable asset with one export of each payload
// variant, plus an export whose class index is out of range.
func SampleAsset(tb testing.TB, opts ...uasset.Option) *uasset.Asset {
	tb.Helper()
	return BuildSample(opts...)
}

// BuildSample is SampleAsset for callers outside tests.
func BuildSample(opts ...uasset.Option) *uasset.Asset {
	a := uasset.New(opts...)
	nm := a.NameMap()
	none := nm.Name(names.None)

	engine := a.AddImport(packageImport(nm, "/Script/Engine"))
	core := a.AddImport(packageImport(nm, "/Script/CoreUObject"))
	actor := a.AddImport(classImport(nm, engine, "Actor"))
	function := a.AddImport(classImport(nm, core, "Function"))
	enum := a.AddImport(classImport(nm, engine, "UserDefinedEnum"))
	stringTable := a.AddImport(classImport(nm, engine, "StringTable"))
	dataTable := a.AddImport(classImport(nm, engine, "DataTable"))
	itemRow := a.AddImport(types.Import{
		ClassPackage: nm.Name("/Script/CoreUObject"),
		ClassName:    nm.Name("ScriptStruct"),
		OuterIndex:   engine,
		ObjectName:   nm.Name("ItemRow"),
	})
	generated := a.AddImport(classImport(nm, engine, "BlueprintGeneratedClass"))

	a.AddExport(&exports.NormalExport{
		BaseExport: exports.BaseExport{ClassIndex: actor, ObjectName: nm.Name("Hero"), ObjectFlags: 0x1, IsAsset: true},
		Properties: &properties.List{Properties: []*properties.Property{
			properties.New(nm, "bAlive", &properties.BoolValue{Value: true}),
			properties.New(nm, "Health", &properties.IntValue{Value: 100}),
			properties.New(nm, "Speed", &properties.FloatValue{Value: 2.5}),
			properties.New(nm, "Title", &properties.StrValue{Value: types.NewFString("Knight")}),
			properties.New(nm, "Team", &properties.NameValue{Value: nm.Name("Blue")}),
			properties.New(nm, "Stance", &properties.EnumValue{EnumType: properties.NewIdent(nm, "EState"), Value: nm.Name("EState::Idle")}),
			properties.New(nm, "Archetype", &properties.ObjectValue{Kind: "ObjectProperty", Value: actor}),
			properties.New(nm, "Mesh", &properties.SoftObjectValue{Kind: "SoftObjectProperty", Value: types.SoftObjectPath{
				PackageName: nm.Name("/Game/Hero"),
				AssetName:   nm.Name("/Game/Hero.Hero"),
				SubPath:     types.NewFString(""),
			}}),
			properties.New(nm, "Location", &properties.StructValue{StructType: properties.NewIdent(nm, "Vector"), Native: &properties.Vector{X: 1, Y: 2, Z: 3}}),
			properties.New(nm, "Levels", &properties.ArrayValue{InnerType: properties.NewIdent(nm, "IntProperty"), Elements: []properties.Value{
				&properties.IntValue{Value: 1},
				&properties.IntValue{Value: 5},
			}}),
			properties.New(nm, "Unlocked", &properties.MapValue{KeyType: properties.NewIdent(nm, "StrProperty"), ValueType: properties.NewIdent(nm, "BoolProperty"), Entries: []properties.MapEntry{
				{Key: &properties.StrValue{Value: types.NewFString("Sword")}, Value: &properties.BoolValue{Value: true}},
			}}),
		}},
		GUIDSerialized: true,
	})

	a.AddExport(&exports.NormalExport{
		BaseExport: exports.BaseExport{
			ClassIndex:  actor,
			ObjectName:  nm.Name("Default__Hero"),
			ObjectFlags: exports.FlagClassDefaultObject,
			Extras:      []byte{0, 0, 0, 0},
		},
		Properties: &properties.List{},
	})

	jump := &exports.FunctionExport{
		StructExport: exports.StructExport{
			NormalExport: exports.NormalExport{
				BaseExport:     exports.BaseExport{ClassIndex: function, OuterIndex: types.ExportIndex(SampleHeroClass - 1), ObjectName: nm.Name("Jump")},
				Properties:     &properties.List{},
				GUIDSerialized: true,
			},
			SuperStruct:  function,
			BytecodeSize: 1,
			Bytecode:     []byte{0x53},
		},
		FunctionFlags: 0x1,
	}
	if v, _ := a.CustomVersion(version.CoreObjectVersion); v >= version.CoreFProperties {
		jump.ChildProperties = []*exports.FProperty{{
			Type:          nm.Name("FloatProperty"),
			Name:          nm.Name("Height"),
			ArrayDim:      1,
			ElementSize:   4,
			PropertyFlags: 0x80,
			RepNotifyFunc: none,
		}}
	}
	a.AddExport(jump)

	a.AddExport(&exports.EnumExport{
		NormalExport: exports.NormalExport{
			BaseExport:     exports.BaseExport{ClassIndex: enum, ObjectName: nm.Name("EState"), IsAsset: true},
			Properties:     &properties.List{},
			GUIDSerialized: true,
		},
		Entries: []exports.EnumEntry{
			{Name: nm.Name("EState::Idle"), Value: 0},
			{Name: nm.Name("EState::Running"), Value: 1},
		},
		CppForm: 2,
	})

	a.AddExport(&exports.StringTableExport{
		NormalExport: exports.NormalExport{
			BaseExport:     exports.BaseExport{ClassIndex: stringTable, ObjectName: nm.Name("ST_Hero")},
			Properties:     &properties.List{},
			GUIDSerialized: true,
		},
		Namespace: types.NewFString("Hero"),
		Entries: []exports.StringTableEntry{
			{Key: types.NewFString("Greeting"), Value: types.NewFString("Well met")},
		},
	})

	a.AddExport(&exports.DataTableExport{
		NormalExport: exports.NormalExport{
			BaseExport: exports.BaseExport{ClassIndex: dataTable, ObjectName: nm.Name("DT_Items")},
			Properties: &properties.List{Properties: []*properties.Property{
				properties.New(nm, "RowStruct", &properties.ObjectValue{Kind: "ObjectProperty", Value: itemRow}),
			}},
			GUIDSerialized: true,
		},
		RowStruct: "ItemRow",
		Rows: []exports.DataTableRow{
			{Name: nm.Name("Sword"), Properties: &properties.List{Properties: []*properties.Property{
				properties.New(nm, "Damage", &properties.IntValue{Value: 12}),
			}}},
		},
	})

	a.AddExport(&exports.RawExport{
		BaseExport: exports.BaseExport{ClassIndex: types.ImportIndex(99), ObjectName: nm.Name("Orphan")},
		Data:       append([]byte(nil), OrphanPayload...),
	})

	a.AddExport(&exports.ClassExport{
		StructExport: exports.StructExport{
			NormalExport: exports.NormalExport{
				BaseExport:     exports.BaseExport{ClassIndex: generated, ObjectName: nm.Name("Hero_C")},
				Properties:     &properties.List{},
				GUIDSerialized: true,
			},
			SuperStruct: actor,
			Children:    []types.PackageIndex{types.ExportIndex(SampleJump - 1)},
		},
		FuncMap:            []exports.FuncMapEntry{{Name: nm.Name("Jump"), Function: types.ExportIndex(SampleJump - 1)}},
		ClassFlags:         0x1,
		ClassConfigName:    nm.Name("Game"),
		ClassGeneratedBy:   types.PackageIndex(0),
		Terminator:         none,
		Cooked:             true,
		ClassDefaultObject: types.ExportIndex(SampleHeroDefaults - 1),
	})
	return a
}

func packageImport(nm *names.Map, name string) types.Import {
	return types.Import{
		ClassPackage: nm.Name("/Script/CoreUObject"),
		ClassName:    nm.Name("Package"),
		ObjectName:   nm.Name(name),
	}
}

func classImport(nm *names.Map, outer types.PackageIndex, name string) types.Import {
	return types.Import{
		ClassPackage: nm.Name("/Script/CoreUObject"),
		ClassName:    nm.Name("Class"),
		OuterIndex:   outer,
		ObjectName:   nm.Name(name),
	}
}

// SampleSchema returns mappings describing the Actor class used by
// UnversionedAsset.
func SampleSchema() *unversioned.Usmap {
	u := unversioned.New()
	u.AddStruct(unversioned.NewStruct("Object", ""))
	u.AddStruct(unversioned.NewStruct("Actor", "Object",
		unversioned.Property{Name: "Health", Type: unversioned.PropertyType{Kind: unversioned.KindInt}},
		unversioned.Property{Name: "Speed", Type: unversioned.PropertyType{Kind: unversioned.KindFloat}},
		unversioned.Property{Name: "Title", Type: unversioned.PropertyType{Kind: unversioned.KindStr}},
	))
	return u
}

// UnversionedAsset builds a cooked asset that records no versions and
// serializes its properties against SampleSchema. It must be decoded
// with the same engine version.
func UnversionedAsset(tb testing.TB, engine version.EngineVersion) *uasset.Asset {
	tb.Helper()

	a := uasset.New(uasset.WithEngineVersion(engine), uasset.WithMappings(SampleSchema()))
	s := a.Summary()
	s.FileVersionUE4 = version.Unversioned
	s.FileVersionUE5 = version.UE5Unversioned
	s.CustomVersions = version.NewCustomVersions()
	s.PackageFlags |= uasset.PackageFlagUnversionedProperties

	nm := a.NameMap()
	engineImport := a.AddImport(packageImport(nm, "/Script/Engine"))
	actor := a.AddImport(classImport(nm, engineImport, "Actor"))
	a.AddExport(&exports.NormalExport{
		BaseExport: exports.BaseExport{ClassIndex: actor, ObjectName: nm.Name("Hero")},
		Properties: &properties.List{
			Header: properties.NewHeader([]int{0, 2}),
			Struct: "Actor",
			Properties: []*properties.Property{
				{Label: "Health", Slot: 0, Value: &properties.IntValue{Value: 80}},
				{Label: "Title", Slot: 2, Value: &properties.StrValue{Value: types.NewFString("Scout")}},
			},
		},
		GUIDSerialized: true,
	})
	return a
}
