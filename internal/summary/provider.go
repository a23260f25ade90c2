// Package summary renders one-line summaries of the target's volume, string
// and string_builder values from a paused process.
package summary

import (
	"encoding/binary"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
	"memfmt/internal/target"
)

// Texts shown in place of a value.
const (
	NullString         = "(null string)"
	EmptyString        = "(empty string)"
	EmptyBuilder       = "length: 0"
	ErrorReadingMemory = "<error reading memory>"
	UnknownVolume      = "UNKNOWN VOLUME"
)

// DefaultMaxReadLength bounds a single string read.
const DefaultMaxReadLength = 1 << 20

// Provider is the two-phase protocol the host drives: Update each time the
// target stops, then Summary each time the value is displayed.
type Provider interface {
	Update()
	Summary() string
}

// Child is a synthetic member shown under a summarized value.
type Child struct {
	Name  string
	Value string
}

// ChildProvider is a Provider that also exposes synthetic children.
type ChildProvider interface {
	Provider

	NumChildren() int

	// ChildAtIndex returns false when i is out of range.
	ChildAtIndex(i int) (Child, bool)

	// ChildIndex returns -1 for a name the value does not currently have.
	ChildIndex(name string) int

	Child(name string) (Child, bool)
}

// Factory constructs a provider for a value. Construction does no I/O.
type Factory func(v dbg.Value, ctx *Context) Provider

// Context holds the settings shared by all providers of a session.
type Context struct {
	Layout        *target.Layout
	Encoding      Encoding
	Decode        DecodeMode
	MaxReadLength uint64
	Logger        common.Logger
}

// NewContext returns a context for the default LP64 little-endian target.
func NewContext() *Context {
	layout, _ := target.DefaultLayout(8, binary.LittleEndian)
	return &Context{
		Layout:        layout,
		Encoding:      EncodingBitflag,
		Decode:        DecodeIgnore,
		MaxReadLength: DefaultMaxReadLength,
		Logger:        common.NewNoOpLogger(),
	}
}

func orDefault(ctx *Context) *Context {
	if ctx == nil {
		return NewContext()
	}
	return ctx
}

func (c *Context) logger() common.Logger {
	if c.Logger == nil {
		return common.NewNoOpLogger()
	}
	return c.Logger
}

func (c *Context) layout() *target.Layout {
	if c.Layout == nil {
		l, _ := target.DefaultLayout(8, binary.LittleEndian)
		c.Layout = l
	}
	return c.Layout
}

func (c *Context) maxRead() uint64 {
	if c.MaxReadLength == 0 {
		return DefaultMaxReadLength
	}
	return c.MaxReadLength
}

// readText reads length bytes at addr and decodes them. Reads are cut to the
// context's bound; the caller still reports the full length.
func (c *Context) readText(r dbg.MemoryReader, addr dbg.Addr, length uint64) (string, error) {
	if r == nil {
		return "", common.NewErrorMsg(dbg.ErrSevError, dbg.ErrNotInit, "value has no process")
	}
	n := length
	if limit := c.maxRead(); n > limit {
		c.logger().Debug("string read truncated", "addr", addr, "length", length, "limit", limit)
		n = limit
	}
	b, err := r.ReadMemory(addr, n)
	if err != nil {
		return "", err
	}
	if uint64(len(b)) != n {
		return "", common.NewErrorWithAddrMsg(dbg.ErrSevError, dbg.ErrMemNacc, addr, "short read")
	}
	return c.Decode.Decode(b), nil
}

// recoverTo is deferred by every host-facing call. A panic from the host's
// Value implementation is logged and replaced by text.
func recoverTo(ctx *Context, kind string, out *string, text string) {
	if r := recover(); r != nil {
		ctx.logger().Warning("summary recovered from panic", "summary", kind, "panic", r)
		*out = text
	}
}
