package dbg

import "strings"

// Target Addressing

// Addr is an address in the inspected process.
type Addr uint64

// NullAddr is the null pointer value in the target.
const NullAddr Addr = 0

// StopID counts target stops. Memory read under one stop is only valid for that stop.
type StopID uint32

// General Library Return and Error Codes

// Err represents library error return type
type Err uint32

const (
	OK                    Err = 0
	ErrFail               Err = 1
	ErrNotInit            Err = 2
	ErrInvalidParamVal    Err = 3
	ErrInvalidParamType   Err = 4
	ErrFileError          Err = 5
	ErrNotSupported       Err = 6
	ErrMemNacc            Err = 7
	ErrMemAccOverlap      Err = 8
	ErrMemAccFileNotFound Err = 9
	ErrMemAccRangeInvalid Err = 10
	ErrMemAccBadLen       Err = 11
	ErrFieldUnknown       Err = 12
	ErrNullDeref          Err = 13
	ErrSnapshotParse      Err = 14
	ErrSnapshotRead       Err = 15
	ErrConfigParse        Err = 16
	ErrDwarfLayout        Err = 17
	ErrSumregNameRepeat   Err = 18
	ErrSumregNameUnknown  Err = 19
	ErrLast               Err = 20
)

// ErrSeverity used to indicate the severity of an error or logger verbosity
type ErrSeverity uint32

const (
	ErrSevNone  ErrSeverity = 0
	ErrSevError ErrSeverity = 1
	ErrSevWarn  ErrSeverity = 2
	ErrSevInfo  ErrSeverity = 3
)

// Builtin summary type names, as the target declares them.
const (
	BuiltinSumVolume        = "volume"
	BuiltinSumString        = "string"
	BuiltinSumStringBuilder = "string_builder"
)

// CanonicalTypeName strips the qualifiers a host may attach to a type name
// ("struct string", "const volume *", "typedef string_builder").
func CanonicalTypeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, "*& ")
	for _, prefix := range []string{"const ", "volatile ", "struct ", "typedef ", "union "} {
		for strings.HasPrefix(name, prefix) {
			name = strings.TrimSpace(strings.TrimPrefix(name, prefix))
		}
	}
	name = strings.TrimSuffix(name, " const")
	return strings.TrimSpace(name)
}
