//go:build linux

package memacc

import (
	"fmt"

	"golang.org/x/sys/unix"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// ProcessAccessor reads the memory of a live, stopped process.
type ProcessAccessor struct {
	BaseAccessor
	pid int
}

// NewProcessAccessor creates an accessor covering the whole address space of pid.
// Unmapped addresses fail at read time.
func NewProcessAccessor(pid int) (*ProcessAccessor, error) {
	if pid <= 0 {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrInvalidParamVal, fmt.Sprintf("invalid pid %d", pid))
	}
	return &ProcessAccessor{
		BaseAccessor: BaseAccessor{
			StartAddress: 0,
			EndAddress:   ^dbg.Addr(0),
			AccType:      TypeProcess,
		},
		pid: pid,
	}, nil
}

// ReadBytes implements the Accessor interface using process_vm_readv.
func (p *ProcessAccessor) ReadBytes(address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error) {
	reqBytes = min(reqBytes, uint32(len(byteBuffer)))
	if reqBytes == 0 {
		return 0, nil
	}

	local := []unix.Iovec{{Base: &byteBuffer[0]}}
	local[0].SetLen(int(reqBytes))
	remote := []unix.RemoteIovec{{Base: uintptr(address), Len: int(reqBytes)}}

	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		return 0, common.WrapError(dbg.ErrMemNacc, err, "pid %d addr 0x%x", p.pid, uint64(address))
	}
	return uint32(n), nil
}

func (p *ProcessAccessor) Pid() int {
	return p.pid
}

func (p *ProcessAccessor) String() string {
	return fmt.Sprintf("ProcAcc; Pid::%d", p.pid)
}
