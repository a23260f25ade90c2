//go:build !linux

package memacc

import (
	"fmt"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// ProcessAccessor reads the memory of a live, stopped process.
type ProcessAccessor struct {
	BaseAccessor
	pid int
}

// NewProcessAccessor is only implemented on Linux.
func NewProcessAccessor(pid int) (*ProcessAccessor, error) {
	return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrNotSupported, fmt.Sprintf("live process reads (pid %d)", pid))
}

func (p *ProcessAccessor) ReadBytes(address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error) {
	return 0, common.NewError(dbg.ErrSevError, dbg.ErrNotSupported)
}

func (p *ProcessAccessor) Pid() int {
	return p.pid
}

func (p *ProcessAccessor) String() string {
	return fmt.Sprintf("ProcAcc; Pid::%d", p.pid)
}
