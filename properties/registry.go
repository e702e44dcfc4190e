package properties

import (
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/unversioned"
)

// newValue returns an empty value for a property class name. Unknown names
// return a RawValue and false.
func newValue(typeName string) (Value, bool) {
	switch typeName {
	case "BoolProperty":
		return &BoolValue{}, true
	case "Int8Property":
		return &Int8Value{}, true
	case "Int16Property":
		return &Int16Value{}, true
	case "IntProperty":
		return &IntValue{}, true
	case "Int64Property":
		return &Int64Value{}, true
	case "UInt16Property":
		return &UInt16Value{}, true
	case "UInt32Property":
		return &UInt32Value{}, true
	case "UInt64Property":
		return &UInt64Value{}, true
	case "FloatProperty":
		return &FloatValue{}, true
	case "DoubleProperty":
		return &DoubleValue{}, true
	case "ByteProperty":
		return &ByteValue{}, true
	case "EnumProperty":
		return &EnumValue{}, true
	case "StrProperty":
		return &StrValue{}, true
	case "NameProperty":
		return &NameValue{}, true
	case "TextProperty":
		return &TextValue{}, true
	case "ObjectProperty", "WeakObjectProperty", "InterfaceProperty", "ClassProperty":
		return &ObjectValue{Kind: typeName}, true
	case "LazyObjectProperty":
		return &LazyObjectValue{}, true
	case "SoftObjectProperty", "SoftClassProperty", "AssetObjectProperty", "AssetClassProperty":
		return &SoftObjectValue{Kind: typeName}, true
	case "DelegateProperty":
		return &DelegateValue{}, true
	case "MulticastDelegateProperty", "MulticastInlineDelegateProperty", "MulticastSparseDelegateProperty":
		return &MulticastDelegateValue{Kind: typeName}, true
	case "FieldPathProperty":
		return &FieldPathValue{}, true
	case "GuidProperty":
		return &GuidValue{}, true
	case "StructProperty":
		return &StructValue{}, true
	case "ArrayProperty":
		return &ArrayValue{}, true
	case "SetProperty":
		return &SetValue{}, true
	case "MapProperty":
		return &MapValue{}, true
	default:
		return &RawValue{TypeName: typeName}, false
	}
}

// newSchemaValue returns an empty value for a schema type, with the type
// details the untagged wire form needs.
func newSchemaValue(pt *unversioned.PropertyType, at int64) (Value, error) {
	switch pt.Kind {
	case unversioned.KindByte:
		return &ByteValue{EnumType: Ident{Name: pt.EnumName}}, nil
	case unversioned.KindEnum:
		v := &EnumValue{EnumType: Ident{Name: pt.EnumName}, Unversioned: true, Underlying: unversioned.KindByte}
		if pt.Inner != nil {
			v.Underlying = pt.Inner.Kind
		}
		return v, nil
	case unversioned.KindStruct:
		return &StructValue{StructType: Ident{Name: pt.StructName}}, nil
	case unversioned.KindArray:
		return &ArrayValue{InnerType: Ident{Name: innerName(pt.Inner)}}, nil
	case unversioned.KindSet:
		return &SetValue{InnerType: Ident{Name: innerName(pt.Inner)}}, nil
	case unversioned.KindMap:
		return &MapValue{KeyType: Ident{Name: innerName(pt.Inner)}, ValueType: Ident{Name: innerName(pt.Value)}}, nil
	case unversioned.KindOptional, unversioned.KindUnknown:
		return nil, codecerr.UnknownType(at, "schema property kind", pt.Kind.String())
	}
	v, ok := newValue(pt.Kind.String())
	if !ok {
		return nil, codecerr.UnknownType(at, "schema property kind", pt.Kind.String())
	}
	return v, nil
}

func innerName(pt *unversioned.PropertyType) string {
	if pt == nil {
		return ""
	}
	return pt.Kind.String()
}
