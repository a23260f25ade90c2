package snapshot

import "memfmt/internal/dbg"

// Info stores version and description from snapshot.ini
type Info struct {
	Version     string
	Description string
}

// DumpDef stores a parsed [dump] section
type DumpDef struct {
	Section string
	Address dbg.Addr
	Path    string
	Length  uint64 // 0 maps the rest of the file
	Offset  uint64
}

// ValueDef stores a parsed [value] section
type ValueDef struct {
	Section string
	Name    string
	Type    string
	Address dbg.Addr
}

// Parsed is the content of a snapshot.ini, sections in index order.
type Parsed struct {
	Info   Info
	Dumps  []DumpDef
	Values []ValueDef
}
