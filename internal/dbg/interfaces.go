package dbg

import "fmt"

// MemoryReader is the single capability summarizers need from the host.
// A read either returns exactly size bytes or an error; it never panics.
type MemoryReader interface {
	ReadMemory(addr Addr, size uint64) ([]byte, error)
}

// Value is a handle to a variable in the inspected process, as exposed by the host.
type Value interface {
	// Name returns the variable or member name.
	Name() string

	// TypeName returns the target type name of the value.
	TypeName() string

	// Address returns the load address of the value.
	Address() (Addr, error)

	// ByteSize returns the size of the value's type in bytes.
	ByteSize() uint64

	// Child returns the named member. Members of a pointed-to struct are reached
	// through the pointer.
	Child(name string) (Value, error)

	// Unsigned returns the value interpreted as an unsigned integer.
	Unsigned() (uint64, error)

	// Process returns the reader for the process the value lives in.
	Process() MemoryReader
}

// ChildUnsigned returns the named child of v as an unsigned integer.
func ChildUnsigned(v Value, name string) (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("no value for member %q", name)
	}
	child, err := v.Child(name)
	if err != nil {
		return 0, err
	}
	if child == nil {
		return 0, fmt.Errorf("member %q not found", name)
	}
	return child.Unsigned()
}

// UnsignedOr returns the named child of v as an unsigned integer, or def if
// the child is missing or unreadable.
func UnsignedOr(v Value, name string, def uint64) uint64 {
	u, err := ChildUnsigned(v, name)
	if err != nil {
		return def
	}
	return u
}
