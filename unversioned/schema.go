package unversioned

import "strconv"

// Kind is a property type code as stored in a usmap file.
type Kind uint8

const (
	KindByte              Kind = 0
	KindBool              Kind = 1
	KindInt               Kind = 2
	KindFloat             Kind = 3
	KindObject            Kind = 4
	KindName              Kind = 5
	KindDelegate          Kind = 6
	KindDouble            Kind = 7
	KindArray             Kind = 8
	KindStruct            Kind = 9
	KindStr               Kind = 10
	KindText              Kind = 11
	KindInterface         Kind = 12
	KindMulticastDelegate Kind = 13
	KindWeakObject        Kind = 14
	KindLazyObject        Kind = 15
	KindAssetObject       Kind = 16
	KindSoftObject        Kind = 17
	KindUInt64            Kind = 18
	KindUInt32            Kind = 19
	KindUInt16            Kind = 20
	KindInt64             Kind = 21
	KindInt16             Kind = 22
	KindInt8              Kind = 23
	KindMap               Kind = 24
	KindSet               Kind = 25
	KindEnum              Kind = 26
	KindFieldPath         Kind = 27
	KindOptional          Kind = 28
	KindUnknown           Kind = 0xFF
)

var kindNames = map[Kind]string{
	KindByte:              "ByteProperty",
	KindBool:              "BoolProperty",
	KindInt:               "IntProperty",
	KindFloat:             "FloatProperty",
	KindObject:            "ObjectProperty",
	KindName:              "NameProperty",
	KindDelegate:          "DelegateProperty",
	KindDouble:            "DoubleProperty",
	KindArray:             "ArrayProperty",
	KindStruct:            "StructProperty",
	KindStr:               "StrProperty",
	KindText:              "TextProperty",
	KindInterface:         "InterfaceProperty",
	KindMulticastDelegate: "MulticastDelegateProperty",
	KindWeakObject:        "WeakObjectProperty",
	KindLazyObject:        "LazyObjectProperty",
	KindAssetObject:       "AssetObjectProperty",
	KindSoftObject:        "SoftObjectProperty",
	KindUInt64:            "UInt64Property",
	KindUInt32:            "UInt32Property",
	KindUInt16:            "UInt16Property",
	KindInt64:             "Int64Property",
	KindInt16:             "Int16Property",
	KindInt8:              "Int8Property",
	KindMap:               "MapProperty",
	KindSet:               "SetProperty",
	KindEnum:              "EnumProperty",
	KindFieldPath:         "FieldPathProperty",
	KindOptional:          "OptionalProperty",
}

// String returns the engine property class name, e.g. "IntProperty".
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown(" + strconv.Itoa(int(k)) + ")"
}

// KindByName returns the kind whose String is name.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// PropertyType describes a property's type, recursively for containers.
type PropertyType struct {
	Kind Kind
	// Inner is the element type of arrays, sets and optionals, the key type
	// of maps, and the underlying integer type of enums.
	Inner *PropertyType
	// Value is the value type of maps.
	Value *PropertyType
	// StructName names the struct of a StructProperty.
	StructName string
	// EnumName names the enum of an EnumProperty or ByteProperty.
	EnumName string
}

// Property is one schema entry of a struct. A static array of ArraySize
// elements occupies ArraySize consecutive schema slots from SchemaIndex.
type Property struct {
	Name        string
	SchemaIndex uint16
	ArraySize   uint8
	Type        PropertyType
}

// Struct is the schema of a class or struct. PropertyCount counts slots,
// which exceeds len(Properties) when static arrays are present.
type Struct struct {
	Name          string
	Super         string
	PropertyCount uint16
	Properties    []Property

	slots  []int
	byName map[string]int
}

// NewStruct builds a struct schema, assigning schema indices in order and
// computing the slot count.
func NewStruct(name, super string, props ...Property) *Struct {
	s := &Struct{Name: name, Super: super, Properties: props}
	var idx uint16
	for i := range s.Properties {
		if s.Properties[i].ArraySize == 0 {
			s.Properties[i].ArraySize = 1
		}
		s.Properties[i].SchemaIndex = idx
		idx += uint16(s.Properties[i].ArraySize)
	}
	s.PropertyCount = idx
	s.index()
	return s
}

func (s *Struct) index() {
	s.slots = make([]int, s.PropertyCount)
	for i := range s.slots {
		s.slots[i] = -1
	}
	s.byName = make(map[string]int, len(s.Properties))
	for i, p := range s.Properties {
		for j := range int(p.ArraySize) {
			slot := int(p.SchemaIndex) + j
			if slot < len(s.slots) {
				s.slots[slot] = i
			}
		}
		if _, dup := s.byName[p.Name]; !dup {
			s.byName[p.Name] = i
		}
	}
}

// Schema is the read-only type table consulted for unversioned data.
type Schema interface {
	// PropertyType returns the property class name of propertyName as
	// declared on className or one of its supers.
	PropertyType(className, propertyName string) (string, bool)
	// Struct returns the schema of a class or struct.
	Struct(name string) (*Struct, bool)
}

// Slot is one position in a struct's flattened schema.
type Slot struct {
	Owner      *Struct
	Property   *Property
	ArrayIndex int
}

// ResolveSlot maps a flattened schema index of structName to its property.
// The struct's own slots come first, then its super chain.
func ResolveSlot(s Schema, structName string, index int) (Slot, bool) {
	st, ok := s.Struct(structName)
	for depth := 0; ok && depth < maxSuperDepth; depth++ {
		if index < int(st.PropertyCount) {
			if index < 0 || st.slots == nil || st.slots[index] < 0 {
				return Slot{}, false
			}
			p := &st.Properties[st.slots[index]]
			return Slot{Owner: st, Property: p, ArrayIndex: index - int(p.SchemaIndex)}, true
		}
		index -= int(st.PropertyCount)
		if st.Super == "" {
			return Slot{}, false
		}
		st, ok = s.Struct(st.Super)
	}
	return Slot{}, false
}

// FindProperty looks propertyName up on structName and its supers.
func FindProperty(s Schema, structName, propertyName string) (*Property, bool) {
	st, ok := s.Struct(structName)
	for depth := 0; ok && depth < maxSuperDepth; depth++ {
		if i, found := st.byName[propertyName]; found {
			return &st.Properties[i], true
		}
		if st.Super == "" {
			break
		}
		st, ok = s.Struct(st.Super)
	}
	return nil, false
}

// maxSuperDepth bounds super chain walks so a cyclic mappings file cannot
// hang a decode.
const maxSuperDepth = 64
