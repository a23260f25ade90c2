package target

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
)

// Kind is how a member's bytes are interpreted.
type Kind int

const (
	KindUnsigned Kind = iota
	KindFloat
	KindPointer
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindUnsigned:
		return "unsigned"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Field is one member of a target struct.
type Field struct {
	Name   string
	Offset uint64
	Size   uint64
	Kind   Kind
	Elem   string // pointee type for KindPointer, member type for KindStruct
}

// Type is the layout of a target struct.
type Type struct {
	Name   string
	Size   uint64
	Fields []Field
}

// Field returns the member called name.
func (t *Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (t *Type) clone() *Type {
	c := *t
	c.Fields = slices.Clone(t.Fields)
	return &c
}

// Target type names.
const (
	TypeVolume        = "volume"
	TypeVolumeCircle  = "volume_circle"
	TypeVolumePolygon = "volume_polygon"
	TypeVolumeBox     = "volume_box"
	TypeString        = "string"
	TypeStringBuilder = "string_builder"
)

// Layout describes the target ABI and the structs the summarizers read.
type Layout struct {
	ByteOrder   binary.ByteOrder
	PointerSize uint64
	Types       map[string]*Type
}

// Type returns the layout of the named struct.
func (l *Layout) Type(name string) (*Type, bool) {
	t, ok := l.Types[name]
	return t, ok
}

// Clone returns a deep copy that can be modified without touching l.
func (l *Layout) Clone() *Layout {
	c := &Layout{
		ByteOrder:   l.ByteOrder,
		PointerSize: l.PointerSize,
		Types:       make(map[string]*Type, len(l.Types)),
	}
	for name, t := range l.Types {
		c.Types[name] = t.clone()
	}
	return c
}

// TypeNames lists the described structs in sorted order.
func (l *Layout) TypeNames() []string {
	return slices.Sorted(maps.Keys(l.Types))
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// DefaultLayout describes the target's structs as a C compiler lays them out
// for the given pointer size. The volume payload follows the 4 byte tag
// unaligned, as the target allocates it.
func DefaultLayout(pointerSize uint64, order binary.ByteOrder) (*Layout, error) {
	if pointerSize != 4 && pointerSize != 8 {
		return nil, fmt.Errorf("unsupported pointer size %d", pointerSize)
	}
	if order == nil {
		order = binary.LittleEndian
	}
	ptr := pointerSize
	u64Off := alignUp(ptr, 8)
	sbLenOff := alignUp(2*ptr, 8)

	types := []*Type{
		{
			Name: TypeVolume,
			Size: 4,
			Fields: []Field{
				{Name: "type", Offset: 0, Size: 4, Kind: KindUnsigned},
			},
		},
		{
			Name: TypeVolumeCircle,
			Size: 4,
			Fields: []Field{
				{Name: "radius", Offset: 0, Size: 4, Kind: KindFloat},
			},
		},
		{
			Name: TypeVolumePolygon,
			Size: alignUp(ptr+4, ptr),
			Fields: []Field{
				{Name: "verticies", Offset: 0, Size: ptr, Kind: KindPointer, Elem: "v2"},
				{Name: "vertexCount", Offset: ptr, Size: 4, Kind: KindUnsigned},
			},
		},
		{
			Name: TypeVolumeBox,
			Size: 8,
			Fields: []Field{
				{Name: "width", Offset: 0, Size: 4, Kind: KindFloat},
				{Name: "height", Offset: 4, Size: 4, Kind: KindFloat},
			},
		},
		{
			Name: TypeString,
			Size: u64Off + 8,
			Fields: []Field{
				{Name: "value", Offset: 0, Size: ptr, Kind: KindPointer, Elem: "u8"},
				{Name: "length", Offset: u64Off, Size: 8, Kind: KindUnsigned},
			},
		},
		{
			Name: TypeStringBuilder,
			Size: sbLenOff + 8,
			Fields: []Field{
				{Name: "outBuffer", Offset: 0, Size: ptr, Kind: KindPointer, Elem: TypeString},
				{Name: "stringBuffer", Offset: ptr, Size: ptr, Kind: KindPointer, Elem: TypeString},
				{Name: "length", Offset: sbLenOff, Size: 8, Kind: KindUnsigned},
			},
		},
	}

	l := &Layout{
		ByteOrder:   order,
		PointerSize: ptr,
		Types:       make(map[string]*Type, len(types)),
	}
	for _, t := range types {
		l.Types[t.Name] = t
	}
	return l, nil
}

// DecodeUnsigned interprets b (1, 2, 4 or 8 bytes) as an unsigned integer.
func DecodeUnsigned(order binary.ByteOrder, b []byte) (uint64, error) {
	switch len(b) {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(order.Uint16(b)), nil
	case 4:
		return uint64(order.Uint32(b)), nil
	case 8:
		return order.Uint64(b), nil
	default:
		return 0, fmt.Errorf("unsupported integer size %d", len(b))
	}
}
