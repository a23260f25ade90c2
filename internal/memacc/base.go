package memacc

import (
	"fmt"
	"sync"

	"memfmt/internal/dbg"
)

// Type describes the storage type of the underlying memory accessor.
type Type int

const (
	TypeUnknown Type = iota
	TypeFile         // Memory dump file accessor
	TypeBufPtr       // Memory buffer accessor
	TypeCBIf         // Callback interface accessor - host supplied reads
	TypeProcess      // Live process accessor
)

func (t Type) String() string {
	switch t {
	case TypeFile:
		return "File"
	case TypeBufPtr:
		return "Buffer"
	case TypeCBIf:
		return "Callback"
	case TypeProcess:
		return "Process"
	default:
		return "Unknown"
	}
}

// Accessor defines the interface for a memory range access.
type Accessor interface {
	// ReadBytes reads up to reqBytes from the memory range into byteBuffer and
	// returns the count read. A zero count with a nil error means the range
	// has no data at address.
	ReadBytes(address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error)

	// AddrInRange tests if an address is in the inclusive range for this accessor.
	AddrInRange(address dbg.Addr) bool

	// BytesInRange tests number of bytes available from the start address, up to the number of requested bytes.
	BytesInRange(address dbg.Addr, reqBytes uint32) uint32

	// OverlapRange tests if supplied range accessor overlaps this range.
	OverlapRange(testAcc Accessor) bool

	// ValidateRange validates the address range.
	ValidateRange() bool

	// GetType returns the storage type of this accessor.
	GetType() Type

	// GetRange returns the start and end addresses of this accessor.
	GetRange() (dbg.Addr, dbg.Addr)
}

// BaseAccessor implements the common logic for memory accessors.
type BaseAccessor struct {
	StartAddress dbg.Addr
	EndAddress   dbg.Addr
	AccType      Type
}

func (b *BaseAccessor) AddrInRange(address dbg.Addr) bool {
	return address >= b.StartAddress && address <= b.EndAddress
}

func (b *BaseAccessor) BytesInRange(address dbg.Addr, reqBytes uint32) uint32 {
	if !b.AddrInRange(address) {
		return 0
	}
	avail := uint64(b.EndAddress) - uint64(address) + 1
	if avail == 0 || avail > uint64(reqBytes) {
		// avail wraps to 0 for a range covering the whole address space
		return reqBytes
	}
	return uint32(avail)
}

func (b *BaseAccessor) OverlapRange(testAcc Accessor) bool {
	st, en := testAcc.GetRange()
	return st <= b.EndAddress && b.StartAddress <= en
}

func (b *BaseAccessor) ValidateRange() bool {
	return b.StartAddress <= b.EndAddress
}

func (b *BaseAccessor) GetType() Type {
	return b.AccType
}

func (b *BaseAccessor) GetRange() (dbg.Addr, dbg.Addr) {
	return b.StartAddress, b.EndAddress
}

func (b *BaseAccessor) String() string {
	return fmt.Sprintf("Range: 0x%X - 0x%X; Type: %s", uint64(b.StartAddress), uint64(b.EndAddress), b.AccType)
}

// Memory Access Cache

const (
	DefaultPageSize = 2048
	DefaultNumPages = 16
	MaxPageSize     = 16384
	MaxPages        = 256
	MinPageSize     = 64
	MinPages        = 4
)

// CacheBlock is one cached page. Pages belong to the stop they were read under.
type CacheBlock struct {
	StAddr      dbg.Addr
	ValidLen    uint32
	Data        []byte
	Stop        dbg.StopID
	UseSequence uint32
}

// Cache holds recently read pages. Target memory only stays valid while the
// target is stopped, so every page is tagged with the stop it was read under
// and never served for another stop.
type Cache struct {
	mu       sync.Mutex
	blocks   []CacheBlock
	pageSize uint32
	numPages int
	sequence uint32
	enabled  bool
	mruIdx   int
}

func NewCache() *Cache {
	return &Cache{
		pageSize: DefaultPageSize,
		numPages: DefaultNumPages,
		sequence: 1,
	}
}

func (c *Cache) EnableCaching(enable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enable
	if enable && c.blocks == nil {
		c.createCaches()
	}
	if !enable {
		c.blocks = nil
	}
}

func (c *Cache) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *Cache) EnabledForSize(reqSize uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && reqSize <= c.pageSize
}

// SetCacheSizes changes the page geometry. Out of range values are clamped
// unless errOnLimit is set.
func (c *Cache) SetCacheSizes(pageSize uint32, numPages int, errOnLimit bool) dbg.Err {
	if pageSize < MinPageSize || pageSize > MaxPageSize || numPages < MinPages || numPages > MaxPages {
		if errOnLimit {
			return dbg.ErrInvalidParamVal
		}
		pageSize = min(max(pageSize, MinPageSize), MaxPageSize)
		numPages = min(max(numPages, MinPages), MaxPages)
	}
	// page bases are computed by masking
	if pageSize&(pageSize-1) != 0 {
		if errOnLimit {
			return dbg.ErrInvalidParamVal
		}
		p := uint32(MinPageSize)
		for p*2 <= pageSize {
			p *= 2
		}
		pageSize = p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageSize = pageSize
	c.numPages = numPages
	if c.enabled {
		c.createCaches()
	}
	return dbg.OK
}

func (c *Cache) createCaches() {
	c.blocks = make([]CacheBlock, c.numPages)
	for i := range c.blocks {
		c.blocks[i].Data = make([]byte, c.pageSize)
		c.clearPage(&c.blocks[i])
	}
	c.mruIdx = 0
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.blocks {
		c.clearPage(&c.blocks[i])
	}
}

// InvalidateExceptStop drops every page not read under stop.
func (c *Cache) InvalidateExceptStop(stop dbg.StopID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.blocks {
		if c.blocks[i].Stop != stop {
			c.clearPage(&c.blocks[i])
		}
	}
}

func (c *Cache) clearPage(block *CacheBlock) {
	block.UseSequence = 0
	block.StAddr = 0
	block.ValidLen = 0
	block.Stop = 0
}

// ReadBytesFromCache satisfies a read from a cached page, loading the page
// through acc on a miss. It fails with ErrMemNacc when the request cannot be
// served from a single page; callers then read acc directly.
func (c *Cache) ReadBytesFromCache(acc Accessor, address dbg.Addr, stop dbg.StopID, reqBytes uint32, byteBuffer []byte) dbg.Err {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.blocks == nil {
		return dbg.ErrFail
	}

	if c.blockInCache(address, reqBytes, stop) {
		blk := &c.blocks[c.mruIdx]
		offset := address - blk.StAddr
		copy(byteBuffer, blk.Data[offset:offset+dbg.Addr(reqBytes)])
		blk.UseSequence = c.sequence
		c.sequence++
		return dbg.OK
	}

	newIdx := c.findNewPage()
	blk := &c.blocks[newIdx]
	c.clearPage(blk)

	pageBase := address &^ dbg.Addr(c.pageSize-1)
	if !acc.AddrInRange(pageBase) {
		pageBase = address
	}

	avail := acc.BytesInRange(pageBase, c.pageSize)
	if avail == 0 {
		return dbg.ErrMemNacc
	}

	read, err := acc.ReadBytes(pageBase, avail, blk.Data)
	if err != nil || read == 0 {
		return dbg.ErrMemNacc
	}

	blk.StAddr = pageBase
	blk.ValidLen = read
	blk.Stop = stop
	blk.UseSequence = c.sequence
	c.sequence++
	c.mruIdx = newIdx

	if c.blockInPage(newIdx, address, reqBytes, stop) {
		offset := address - blk.StAddr
		copy(byteBuffer, blk.Data[offset:offset+dbg.Addr(reqBytes)])
		return dbg.OK
	}

	return dbg.ErrMemNacc
}

func (c *Cache) blockInPage(idx int, address dbg.Addr, reqBytes uint32, stop dbg.StopID) bool {
	block := &c.blocks[idx]
	if block.Stop != stop || block.ValidLen == 0 {
		return false
	}
	return address >= block.StAddr && uint64(address)+uint64(reqBytes) <= uint64(block.StAddr)+uint64(block.ValidLen)
}

func (c *Cache) blockInCache(address dbg.Addr, reqBytes uint32, stop dbg.StopID) bool {
	for i := 0; i < len(c.blocks); i++ {
		idx := (c.mruIdx + i) % len(c.blocks)
		if c.blockInPage(idx, address, reqBytes, stop) {
			c.mruIdx = idx
			return true
		}
	}
	return false
}

func (c *Cache) findNewPage() int {
	// Find oldest page (lowest UseSequence)
	oldestIdx := 0
	minSeq := c.blocks[0].UseSequence
	for i := 1; i < len(c.blocks); i++ {
		if c.blocks[i].UseSequence < minSeq {
			minSeq = c.blocks[i].UseSequence
			oldestIdx = i
		}
	}
	return oldestIdx
}
