package memacc

import (
	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// FnMemAccCB reads target memory on behalf of the host. It returns the
// number of bytes copied into byteBuffer, or an error when the host could
// not read at all.
type FnMemAccCB func(ctx any, address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error)

// CallbackAccessor represents a callback memory accessor, the usual way a
// debugger host hands its process reads to the library.
type CallbackAccessor struct {
	BaseAccessor
	CBFn FnMemAccCB
	Ctx  any
}

// NewCallbackAccessor creates a new callback accessor.
func NewCallbackAccessor(startAddr dbg.Addr, endAddr dbg.Addr) *CallbackAccessor {
	return &CallbackAccessor{
		BaseAccessor: BaseAccessor{
			StartAddress: startAddr,
			EndAddress:   endAddr,
			AccType:      TypeCBIf,
		},
	}
}

// ReadBytes implements the Accessor interface.
func (c *CallbackAccessor) ReadBytes(address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error) {
	if !c.AddrInRange(address) {
		return 0, nil
	}
	if c.CBFn == nil {
		return 0, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrNotInit, "memory callback not set")
	}
	n, err := c.CBFn(c.Ctx, address, c.BytesInRange(address, reqBytes), byteBuffer)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// SetCBIfFn sets the callback function.
func (c *CallbackAccessor) SetCBIfFn(fn FnMemAccCB, ctx any) {
	c.CBFn = fn
	c.Ctx = ctx
}
