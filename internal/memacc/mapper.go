package memacc

import (
	"math"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// Mapper defines the interface for mapping and reading target memory.
type Mapper interface {
	dbg.MemoryReader

	// ReadTargetMemory reads bytes from the mapped memory accessors.
	ReadTargetMemory(address dbg.Addr, numBytes *uint32, pBuffer []byte) dbg.Err

	// SetStopID tells the mapper the target has stopped again; pages cached
	// under earlier stops are dropped.
	SetStopID(stop dbg.StopID)

	// AddAccessor adds a new memory accessor to the mapper.
	AddAccessor(accessor Accessor) dbg.Err

	// RemoveAccessor removes a specific accessor.
	RemoveAccessor(accessor Accessor) dbg.Err

	// RemoveAllAccessors clears all accessors.
	RemoveAllAccessors()

	// EnableCaching controls memory access caching.
	EnableCaching(enable bool) dbg.Err
}

// GlobalMapper routes reads to the accessor covering the address.
type GlobalMapper struct {
	accessors []Accessor
	accCurr   Accessor
	cache     *Cache
	stop      dbg.StopID
}

func NewGlobalMapper() *GlobalMapper {
	return &GlobalMapper{
		cache: NewCache(),
	}
}

func (m *GlobalMapper) EnableCaching(enable bool) dbg.Err {
	m.cache.EnableCaching(enable)
	return dbg.OK
}

// Cache gives access to the page cache, for sizing.
func (m *GlobalMapper) Cache() *Cache {
	return m.cache
}

func (m *GlobalMapper) SetStopID(stop dbg.StopID) {
	if stop == m.stop {
		return
	}
	m.stop = stop
	if m.cache.Enabled() {
		m.cache.InvalidateExceptStop(stop)
	}
}

func (m *GlobalMapper) StopID() dbg.StopID {
	return m.stop
}

// ReadTargetMemory reads up to *numBytes at address into pBuffer. On return
// *numBytes holds the count actually read; zero with OK means no accessor
// covers the address.
func (m *GlobalMapper) ReadTargetMemory(address dbg.Addr, numBytes *uint32, pBuffer []byte) dbg.Err {
	if uint64(len(pBuffer)) < uint64(*numBytes) {
		return dbg.ErrInvalidParamVal
	}

	if !m.findAccessor(address) {
		*numBytes = 0
		return dbg.OK
	}

	if m.cache.EnabledForSize(*numBytes) {
		if m.cache.ReadBytesFromCache(m.accCurr, address, m.stop, *numBytes, pBuffer) == dbg.OK {
			return dbg.OK
		}
		// fall back to a direct read
	}

	read, err := m.accCurr.ReadBytes(address, *numBytes, pBuffer)
	if err != nil {
		*numBytes = 0
		return common.ErrCode(err)
	}
	if read > *numBytes {
		return dbg.ErrMemAccBadLen
	}
	*numBytes = read
	return dbg.OK
}

// ReadMemory implements dbg.MemoryReader. Anything short of the full size
// is a failure.
func (m *GlobalMapper) ReadMemory(addr dbg.Addr, size uint64) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	if size > math.MaxUint32 || uint64(addr)+size-1 < uint64(addr) {
		return nil, common.NewErrorWithAddrMsg(dbg.ErrSevError, dbg.ErrMemAccBadLen, addr, "read size out of range")
	}

	buf := make([]byte, size)
	numBytes := uint32(size)
	if code := m.ReadTargetMemory(addr, &numBytes, buf); code != dbg.OK {
		return nil, common.NewErrorWithAddr(dbg.ErrSevError, code, addr)
	}
	if uint64(numBytes) != size {
		return nil, common.NewErrorWithAddr(dbg.ErrSevError, dbg.ErrMemNacc, addr)
	}
	return buf, nil
}

func (m *GlobalMapper) AddAccessor(accessor Accessor) dbg.Err {
	if !accessor.ValidateRange() {
		return dbg.ErrMemAccRangeInvalid
	}

	for _, a := range m.accessors {
		if a.OverlapRange(accessor) {
			return dbg.ErrMemAccOverlap
		}
	}

	m.accessors = append(m.accessors, accessor)
	return dbg.OK
}

func (m *GlobalMapper) RemoveAccessor(accessor Accessor) dbg.Err {
	for i, a := range m.accessors {
		if a == accessor {
			m.accessors = append(m.accessors[:i], m.accessors[i+1:]...)
			if m.accCurr == accessor {
				m.accCurr = nil
			}
			m.cache.InvalidateAll()
			return dbg.OK
		}
	}
	return dbg.ErrInvalidParamVal
}

func (m *GlobalMapper) RemoveAllAccessors() {
	for _, acc := range m.accessors {
		if fa, ok := acc.(*FileAccessor); ok {
			fa.Close()
		}
	}
	m.accessors = nil
	m.accCurr = nil
	m.cache.InvalidateAll()
}

func (m *GlobalMapper) GetAccessors() []Accessor {
	return m.accessors
}

func (m *GlobalMapper) findAccessor(address dbg.Addr) bool {
	// Try current accessor first
	if m.accCurr != nil && m.accCurr.AddrInRange(address) {
		return true
	}
	for _, acc := range m.accessors {
		if acc.AddrInRange(address) {
			m.accCurr = acc
			return true
		}
	}
	return false
}
