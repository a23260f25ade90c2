package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// IniFile represents a parsed INI file.
// It maps section names to a map of key-value pairs.
// Global properties (before any section) are stored in the "" (empty string) section.
type IniFile struct {
	Sections map[string]map[string]string
	Order    []string // section names in file order, "" excluded
}

// NewIniFile creates a new empty IniFile
func NewIniFile() *IniFile {
	return &IniFile{
		Sections: make(map[string]map[string]string),
	}
}

// ParseIni reads an INI file from an io.Reader and returns an IniFile.
// Lines that are neither a section header, a comment nor key=value are errors.
func ParseIni(r io.Reader) (*IniFile, error) {
	ini := NewIniFile()
	scanner := bufio.NewScanner(r)
	currentSection := ""
	ini.Sections[currentSection] = make(map[string]string)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines and comments
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: unterminated section header %q", lineNo, line)
			}
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			if _, exists := ini.Sections[currentSection]; !exists {
				ini.Sections[currentSection] = make(map[string]string)
				ini.Order = append(ini.Order, currentSection)
			}
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value, got %q", lineNo, line)
		}
		ini.Sections[currentSection][strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ini, nil
}

// GetSection returns the key-value map for a given section, or nil if not found
func (ini *IniFile) GetSection(sectionName string) map[string]string {
	return ini.Sections[sectionName]
}
