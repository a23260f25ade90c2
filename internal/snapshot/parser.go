package snapshot

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// indexed pairs a section definition with the N of its name.
type indexed[T any] struct {
	idx uint64
	def T
}

// Parse reads a snapshot.ini. Dump and value sections are returned ordered
// by their numeric suffix.
func Parse(input io.Reader) (*Parsed, error) {
	ini, err := ParseIni(input)
	if err != nil {
		return nil, common.WrapError(dbg.ErrSnapshotParse, err, "snapshot.ini")
	}
	parsed := &Parsed{}

	snapSec, ok := ini.Sections[SnapshotSectionName]
	if !ok {
		return nil, parseError("missing [%s] section", SnapshotSectionName)
	}
	parsed.Info.Version = snapSec[VersionKey]
	parsed.Info.Description = snapSec[DescriptionKey]

	var dumps []indexed[DumpDef]
	var values []indexed[ValueDef]

	for _, secName := range ini.Order {
		secMap := ini.Sections[secName]
		switch {
		case strings.HasPrefix(secName, DumpFileSectionPrefix):
			idx, err := sectionIndex(secName, DumpFileSectionPrefix)
			if err != nil {
				return nil, err
			}
			dump, err := parseDump(secName, secMap)
			if err != nil {
				return nil, err
			}
			dumps = append(dumps, indexed[DumpDef]{idx, dump})

		case strings.HasPrefix(secName, ValueSectionPrefix):
			idx, err := sectionIndex(secName, ValueSectionPrefix)
			if err != nil {
				return nil, err
			}
			value, err := parseValue(secName, secMap)
			if err != nil {
				return nil, err
			}
			values = append(values, indexed[ValueDef]{idx, value})
		}
	}

	slices.SortStableFunc(dumps, func(a, b indexed[DumpDef]) int { return cmpIndex(a.idx, b.idx) })
	slices.SortStableFunc(values, func(a, b indexed[ValueDef]) int { return cmpIndex(a.idx, b.idx) })
	for _, d := range dumps {
		parsed.Dumps = append(parsed.Dumps, d.def)
	}
	for _, v := range values {
		parsed.Values = append(parsed.Values, v.def)
	}
	return parsed, nil
}

func cmpIndex(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func parseDump(secName string, sec map[string]string) (DumpDef, error) {
	dump := DumpDef{Section: secName}

	dump.Path = sec[DumpFileKey]
	if dump.Path == "" {
		return dump, parseError("[%s]: missing %s", secName, DumpFileKey)
	}
	addr, err := requiredUint(secName, sec, DumpAddressKey)
	if err != nil {
		return dump, err
	}
	dump.Address = dbg.Addr(addr)

	if dump.Length, err = optionalUint(secName, sec, DumpLengthKey); err != nil {
		return dump, err
	}
	if dump.Offset, err = optionalUint(secName, sec, DumpOffsetKey); err != nil {
		return dump, err
	}
	return dump, nil
}

func parseValue(secName string, sec map[string]string) (ValueDef, error) {
	value := ValueDef{
		Section: secName,
		Name:    sec[ValueNameKey],
		Type:    sec[ValueTypeKey],
	}
	if value.Name == "" {
		value.Name = secName
	}
	if value.Type == "" {
		return value, parseError("[%s]: missing %s", secName, ValueTypeKey)
	}
	addr, err := requiredUint(secName, sec, ValueAddressKey)
	if err != nil {
		return value, err
	}
	value.Address = dbg.Addr(addr)
	return value, nil
}

// sectionIndex returns N for a section named prefixN.
func sectionIndex(secName, prefix string) (uint64, error) {
	idx, err := strconv.ParseUint(strings.TrimPrefix(secName, prefix), 10, 32)
	if err != nil {
		return 0, parseError("bad section name [%s], want %s<N>", secName, prefix)
	}
	return idx, nil
}

func requiredUint(secName string, sec map[string]string, key string) (uint64, error) {
	s, ok := sec[key]
	if !ok || s == "" {
		return 0, parseError("[%s]: missing %s", secName, key)
	}
	v, err := parseUint(s)
	if err != nil {
		return 0, parseError("[%s]: bad %s %q", secName, key, s)
	}
	return v, nil
}

func optionalUint(secName string, sec map[string]string, key string) (uint64, error) {
	if s, ok := sec[key]; !ok || s == "" {
		return 0, nil
	}
	return requiredUint(secName, sec, key)
}

func parseUint(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseError(format string, args ...any) error {
	return common.NewErrorMsg(dbg.ErrSevError, dbg.ErrSnapshotParse, fmt.Sprintf(format, args...))
}
