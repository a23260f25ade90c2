package memacc

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

// FileRegion maps an address range onto an offset in the dump file.
type FileRegion struct {
	BaseAccessor
	fileOffset int64
}

// FileAccessor serves reads from a raw memory dump on disk.
type FileAccessor struct {
	BaseAccessor
	filePath   string
	file       *os.File
	fileSize   int64
	regions    []FileRegion
	hasRegions bool
	mu         sync.Mutex
}

// NewFileAccessor opens path and maps size bytes from offset at startAddr.
// A zero size maps the rest of the file.
func NewFileAccessor(path string, startAddr dbg.Addr, offset int64, size int64) (*FileAccessor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(dbg.ErrMemAccFileNotFound, err, "%s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, common.WrapError(dbg.ErrFileError, err, "stat %s", path)
	}
	fileSize := info.Size()

	fa := &FileAccessor{
		filePath: path,
		file:     f,
		fileSize: fileSize,
	}
	fa.AccType = TypeFile

	if size == 0 && offset >= 0 {
		size = fileSize - offset
	}
	if offset < 0 || size < 0 || offset > fileSize || offset+size > fileSize {
		f.Close()
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrMemAccRangeInvalid,
			fmt.Sprintf("range 0x%x+0x%x exceeds file size 0x%x of %s", offset, size, fileSize, path))
	}
	if size == 0 {
		f.Close()
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrMemAccRangeInvalid, "empty dump "+path)
	}
	fa.AddOffsetRange(startAddr, uint64(size), offset)

	return fa, nil
}

// AddOffsetRange maps another address range onto the same file.
func (f *FileAccessor) AddOffsetRange(startAddr dbg.Addr, size uint64, offset int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if size == 0 {
		return
	}

	endAddr := startAddr + dbg.Addr(size) - 1

	f.regions = append(f.regions, FileRegion{
		BaseAccessor: BaseAccessor{
			StartAddress: startAddr,
			EndAddress:   endAddr,
			AccType:      TypeFile,
		},
		fileOffset: offset,
	})

	sort.Slice(f.regions, func(i, j int) bool {
		return f.regions[i].StartAddress < f.regions[j].StartAddress
	})

	// Adjust base range
	if !f.hasRegions {
		f.StartAddress = startAddr
		f.EndAddress = endAddr
		f.hasRegions = true
		return
	}
	if startAddr < f.StartAddress {
		f.StartAddress = startAddr
	}
	if endAddr > f.EndAddress {
		f.EndAddress = endAddr
	}
}

// BytesInRange only counts bytes backed by a mapped region.
func (f *FileAccessor) BytesInRange(address dbg.Addr, reqBytes uint32) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reg := f.regionFor(address); reg != nil {
		return reg.BytesInRange(address, reqBytes)
	}
	return 0
}

func (f *FileAccessor) regionFor(address dbg.Addr) *FileRegion {
	for i := range f.regions {
		if f.regions[i].AddrInRange(address) {
			return &f.regions[i]
		}
	}
	return nil
}

// ReadBytes implements the Accessor interface.
func (f *FileAccessor) ReadBytes(address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reg := f.regionFor(address)
	if reg == nil {
		return 0, nil
	}
	available := reg.BytesInRange(address, reqBytes)
	if available == 0 {
		return 0, nil
	}
	readOffset := int64(address-reg.StartAddress) + reg.fileOffset

	n, err := f.file.ReadAt(byteBuffer[:available], readOffset)
	if err != nil && err != io.EOF {
		return 0, common.WrapError(dbg.ErrFileError, err, "read %s", f.filePath)
	}

	return uint32(n), nil
}

func (f *FileAccessor) Close() error {
	return f.file.Close()
}

func (f *FileAccessor) String() string {
	return fmt.Sprintf("FileAcc; Range::0x%x:0x%x; Filename=%s", uint64(f.StartAddress), uint64(f.EndAddress), f.filePath)
}
