package memacc

import (
	"memfmt/internal/dbg"
)

// BufferAccessor represents a memory accessor for a memory buffer.
type BufferAccessor struct {
	BaseAccessor
	Buffer []byte
}

// NewBufferAccessor creates a new buffer accessor.
func NewBufferAccessor(startAddr dbg.Addr, buffer []byte) *BufferAccessor {
	b := &BufferAccessor{}
	b.AccType = TypeBufPtr
	b.InitAccessor(startAddr, buffer)
	return b
}

// ReadBytes implements the Accessor interface.
func (b *BufferAccessor) ReadBytes(address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error) {
	if !b.AddrInRange(address) {
		return 0, nil
	}

	offset := address - b.StartAddress
	bytesToRead := b.BytesInRange(address, reqBytes)

	if bytesToRead > 0 {
		copy(byteBuffer, b.Buffer[offset:offset+dbg.Addr(bytesToRead)])
	}

	return bytesToRead, nil
}

// InitAccessor re-initializes the accessor with new values.
func (b *BufferAccessor) InitAccessor(startAddr dbg.Addr, buffer []byte) {
	b.StartAddress = startAddr
	// an empty buffer leaves end below start, which ValidateRange rejects
	b.EndAddress = startAddr + dbg.Addr(len(buffer)) - 1
	b.Buffer = buffer
}
