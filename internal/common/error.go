package common

import (
	"errors"
	"fmt"
	"strings"

	"memfmt/internal/dbg"
)

// NoAddr marks an error that is not tied to a target address.
const NoAddr = ^dbg.Addr(0)

// Error represents the library error object.
type Error struct {
	Code    dbg.Err
	Sev     dbg.ErrSeverity
	Addr    dbg.Addr
	Message string
	Err     error
}

func NewError(sev dbg.ErrSeverity, code dbg.Err) *Error {
	return &Error{
		Code: code,
		Sev:  sev,
		Addr: NoAddr,
	}
}

func NewErrorMsg(sev dbg.ErrSeverity, code dbg.Err, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Addr:    NoAddr,
		Message: msg,
	}
}

func NewErrorWithAddr(sev dbg.ErrSeverity, code dbg.Err, addr dbg.Addr) *Error {
	return &Error{
		Code: code,
		Sev:  sev,
		Addr: addr,
	}
}

func NewErrorWithAddrMsg(sev dbg.ErrSeverity, code dbg.Err, addr dbg.Addr, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Addr:    addr,
		Message: msg,
	}
}

// WrapError builds an error-severity Error around a lower level cause.
func WrapError(code dbg.Err, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Sev:     dbg.ErrSevError,
		Addr:    NoAddr,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Sev {
	case dbg.ErrSevNone:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	case dbg.ErrSevError:
		sb.WriteString("ERROR:")
	case dbg.ErrSevWarn:
		sb.WriteString("WARN :")
	case dbg.ErrSevInfo:
		sb.WriteString("INFO :")
	default:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	}

	sb.WriteString(fmt.Sprintf("0x%04x ", e.Code))

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("(%s) [%s]; ", desc.name, desc.msg))
	} else {
		sb.WriteString("(unknown); ")
	}

	if e.Addr != NoAddr {
		sb.WriteString(fmt.Sprintf("Addr=0x%x; ", uint64(e.Addr)))
	}

	sb.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			sb.WriteString(": ")
		}
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can compare
// against a code-only template: errors.Is(err, common.NewError(sev, dbg.ErrMemNacc)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ErrCode returns the library code of err, OK for nil, or ErrFail for foreign errors.
func ErrCode(err error) dbg.Err {
	if err == nil {
		return dbg.OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return dbg.ErrFail
}

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[dbg.Err]errDesc{
	dbg.OK:                    {"MEMFMT_OK", "No Error."},
	dbg.ErrFail:               {"MEMFMT_ERR_FAIL", "General failure."},
	dbg.ErrNotInit:            {"MEMFMT_ERR_NOT_INIT", "Component not initialised."},
	dbg.ErrInvalidParamVal:    {"MEMFMT_ERR_INVALID_PARAM_VAL", "Invalid value parameter passed to component."},
	dbg.ErrInvalidParamType:   {"MEMFMT_ERR_INVALID_PARAM_TYPE", "Type mismatch on abstract interface."},
	dbg.ErrFileError:          {"MEMFMT_ERR_FILE_ERROR", "File access error"},
	dbg.ErrNotSupported:       {"MEMFMT_ERR_NOT_SUPPORTED", "Operation not supported on this platform."},
	dbg.ErrMemNacc:            {"MEMFMT_ERR_MEM_NACC", "Unable to access required memory address."},
	dbg.ErrMemAccOverlap:      {"MEMFMT_ERR_MEM_ACC_OVERLAP", "Attempted to set an overlapping range in memory access map."},
	dbg.ErrMemAccFileNotFound: {"MEMFMT_ERR_MEM_ACC_FILE_NOT_FOUND", "Memory access file could not be opened."},
	dbg.ErrMemAccRangeInvalid: {"MEMFMT_ERR_MEM_ACC_RANGE_INVALID", "Address range in accessor set to invalid values."},
	dbg.ErrMemAccBadLen:       {"MEMFMT_ERR_MEM_ACC_BAD_LEN", "Memory accessor returned a bad read length value."},
	dbg.ErrFieldUnknown:       {"MEMFMT_ERR_FIELD_UNKNOWN", "Type has no member with the requested name."},
	dbg.ErrNullDeref:          {"MEMFMT_ERR_NULL_DEREF", "Attempted to follow a null pointer."},
	dbg.ErrSnapshotParse:      {"MEMFMT_ERR_SNAPSHOT_PARSE", "Snapshot file parse error"},
	dbg.ErrSnapshotRead:       {"MEMFMT_ERR_SNAPSHOT_READ", "Snapshot reader error"},
	dbg.ErrConfigParse:        {"MEMFMT_ERR_CONFIG_PARSE", "Configuration file parse error"},
	dbg.ErrDwarfLayout:        {"MEMFMT_ERR_DWARF_LAYOUT", "Type layout could not be resolved from debug info."},
	dbg.ErrSumregNameRepeat:   {"MEMFMT_ERR_SUMREG_NAME_REPEAT", "Attempted to register a summarizer with the same name as another one."},
	dbg.ErrSumregNameUnknown:  {"MEMFMT_ERR_SUMREG_NAME_UNKNOWN", "Attempted to find a summarizer with a name that is not known in the library."},
	dbg.ErrLast:               {"MEMFMT_ERR_LAST", "No error - error code end marker"},
}

// ErrorCodeName returns the symbolic name and description of code.
func ErrorCodeName(code dbg.Err) (name, msg string, ok bool) {
	d, ok := errorCodeDesc[code]
	return d.name, d.msg, ok
}
