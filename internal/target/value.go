package target

import (
	"fmt"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// Value is a dbg.Value backed by a layout and a memory reader, for hosts
// that expose raw memory but no type information of their own.
type Value struct {
	name   string
	kind   Kind
	typ    string // struct name, or pointee name for pointers
	size   uint64
	addr   dbg.Addr
	layout *Layout
	reader dbg.MemoryReader
}

// NewValue returns a handle to the struct typeName stored at addr.
func NewValue(layout *Layout, reader dbg.MemoryReader, name, typeName string, addr dbg.Addr) (*Value, error) {
	t, ok := layout.Type(dbg.CanonicalTypeName(typeName))
	if !ok {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamType, "no layout for type "+typeName)
	}
	return &Value{
		name:   name,
		kind:   KindStruct,
		typ:    t.Name,
		size:   t.Size,
		addr:   addr,
		layout: layout,
		reader: reader,
	}, nil
}

func (v *Value) Name() string {
	return v.name
}

func (v *Value) TypeName() string {
	if v.kind == KindPointer {
		return v.typ + " *"
	}
	return v.typ
}

func (v *Value) Kind() Kind {
	return v.kind
}

func (v *Value) Address() (dbg.Addr, error) {
	return v.addr, nil
}

func (v *Value) ByteSize() uint64 {
	return v.size
}

func (v *Value) Process() dbg.MemoryReader {
	return v.reader
}

// Unsigned reads integer and pointer members.
func (v *Value) Unsigned() (uint64, error) {
	if v.kind != KindUnsigned && v.kind != KindPointer {
		return 0, common.NewErrorWithAddrMsg(dbg.ErrSevError, dbg.ErrInvalidParamType, v.addr,
			fmt.Sprintf("%s is a %s", v.name, v.kind))
	}
	if v.reader == nil {
		return 0, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrNotInit, "no memory reader")
	}
	b, err := v.reader.ReadMemory(v.addr, v.size)
	if err != nil {
		return 0, err
	}
	return DecodeUnsigned(v.layout.ByteOrder, b)
}

// Child returns the named member. A pointer to a struct is followed first.
func (v *Value) Child(name string) (dbg.Value, error) {
	base := v
	if v.kind == KindPointer {
		deref, err := v.Deref()
		if err != nil {
			return nil, err
		}
		base = deref
	}
	if base.kind != KindStruct {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrFieldUnknown, v.name+"."+name)
	}

	t, ok := v.layout.Type(base.typ)
	if !ok {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamType, "no layout for type "+base.typ)
	}
	f, ok := t.Field(name)
	if !ok {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrFieldUnknown, t.Name+"."+name)
	}

	child := &Value{
		name:   name,
		kind:   f.Kind,
		typ:    f.Elem,
		size:   f.Size,
		addr:   base.addr + dbg.Addr(f.Offset),
		layout: v.layout,
		reader: v.reader,
	}
	return child, nil
}

// Deref follows a pointer to a described struct.
func (v *Value) Deref() (*Value, error) {
	if v.kind != KindPointer {
		return nil, common.NewErrorWithAddrMsg(dbg.ErrSevError, dbg.ErrInvalidParamType, v.addr, v.name+" is not a pointer")
	}
	ptr, err := v.Unsigned()
	if err != nil {
		return nil, err
	}
	if dbg.Addr(ptr) == dbg.NullAddr {
		return nil, common.NewErrorWithAddrMsg(dbg.ErrSevError, dbg.ErrNullDeref, v.addr, v.name)
	}
	t, ok := v.layout.Type(v.typ)
	if !ok {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamType, "no layout for type "+v.typ)
	}
	return &Value{
		name:   "*" + v.name,
		kind:   KindStruct,
		typ:    t.Name,
		size:   t.Size,
		addr:   dbg.Addr(ptr),
		layout: v.layout,
		reader: v.reader,
	}, nil
}
