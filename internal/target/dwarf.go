package target

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
	"os"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// ExecutableFormat represents the type of executable file
type ExecutableFormat int

const (
	FormatUnknown ExecutableFormat = iota
	FormatELF                      // Linux, FreeBSD, etc.
	FormatPE                       // Windows
	FormatMachO                    // macOS, iOS
)

func (f ExecutableFormat) String() string {
	switch f {
	case FormatELF:
		return "ELF"
	case FormatPE:
		return "PE"
	case FormatMachO:
		return "Mach-O"
	default:
		return "Unknown"
	}
}

// DetectExecutableFormat determines the executable format by examining magic bytes
func DetectExecutableFormat(filename string) (ExecutableFormat, error) {
	file, err := os.Open(filename)
	if err != nil {
		return FormatUnknown, err
	}
	defer file.Close()

	magic := make([]byte, 4)
	if _, err := file.Read(magic); err != nil {
		return FormatUnknown, err
	}

	switch {
	case magic[0] == 0x7f && magic[1] == 'E' && magic[2] == 'L' && magic[3] == 'F':
		return FormatELF, nil
	case magic[0] == 'M' && magic[1] == 'Z':
		return FormatPE, nil
	case (magic[0] == 0xfe && magic[1] == 0xed && magic[2] == 0xfa && (magic[3] == 0xce || magic[3] == 0xcf)) ||
		((magic[0] == 0xce || magic[0] == 0xcf) && magic[1] == 0xfa && magic[2] == 0xed && magic[3] == 0xfe):
		return FormatMachO, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown executable format, magic bytes: %x", magic)
	}
}

func openDWARF(path string) (*dwarf.Data, error) {
	format, err := DetectExecutableFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatELF:
		f, err := elf.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.DWARF()
	case FormatPE:
		f, err := pe.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.DWARF()
	case FormatMachO:
		f, err := macho.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.DWARF()
	}
	return nil, fmt.Errorf("unsupported executable format %s", format)
}

// ResolveDWARF returns a copy of base with struct sizes and member offsets
// taken from the debug info of the target binary at path. Structs or members
// the binary does not describe keep their base values.
func ResolveDWARF(path string, base *Layout) (*Layout, error) {
	data, err := openDWARF(path)
	if err != nil {
		return nil, common.WrapError(dbg.ErrDwarfLayout, err, "%s", path)
	}
	return resolveFromData(data, base)
}

func resolveFromData(data *dwarf.Data, base *Layout) (*Layout, error) {
	out := base.Clone()
	found := 0

	reader := data.Reader()
	for {
		entry, err := reader.Next()
		if err != nil {
			return nil, common.WrapError(dbg.ErrDwarfLayout, err, "reading debug info")
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagStructType && entry.Tag != dwarf.TagTypedef {
			continue
		}
		name, _ := entry.Val(dwarf.AttrName).(string)
		t, ok := out.Types[name]
		if !ok {
			continue
		}

		typ, err := data.Type(entry.Offset)
		if err != nil {
			continue
		}
		if st, ok := underlyingStruct(typ); ok {
			applyStruct(t, st)
			found++
		}
		if entry.Children {
			reader.SkipChildren()
		}
	}

	if found == 0 {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrDwarfLayout, "no described types in debug info")
	}
	return out, nil
}

func underlyingStruct(t dwarf.Type) (*dwarf.StructType, bool) {
	for {
		switch tt := t.(type) {
		case *dwarf.TypedefType:
			t = tt.Type
		case *dwarf.StructType:
			return tt, !tt.Incomplete
		default:
			return nil, false
		}
	}
}

// applyStruct copies size and member offsets from st onto t.
func applyStruct(t *Type, st *dwarf.StructType) {
	if st.ByteSize > 0 {
		t.Size = uint64(st.ByteSize)
	}
	for _, m := range st.Field {
		for i := range t.Fields {
			if t.Fields[i].Name != m.Name {
				continue
			}
			t.Fields[i].Offset = uint64(m.ByteOffset)
			if sz := m.Type.Size(); sz > 0 {
				t.Fields[i].Size = uint64(sz)
			}
		}
	}
}
