package memacc

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
)

const (
	NumBlocks      = 2
	BlockNumWords  = 1024
	BlockSizeBytes = 4 * BlockNumWords
)

func blockVal(blockNum int, index int) uint32 {
	return (uint32(blockNum) << 16) | uint32(index)
}

func blockBytes(blockNum int) []byte {
	buf := make([]byte, BlockSizeBytes)
	for i := 0; i < BlockNumWords; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], blockVal(blockNum, i))
	}
	return buf
}

func TestOverlapRegions(t *testing.T) {
	mapper := NewGlobalMapper()

	acc1 := NewBufferAccessor(0x0000, blockBytes(0))
	if err := mapper.AddAccessor(acc1); err != dbg.OK {
		t.Errorf("Failed to set memory accessor: %v", err)
	}

	// Overlapping region
	acc2 := NewBufferAccessor(0x0800, blockBytes(1))
	if err := mapper.AddAccessor(acc2); err != dbg.ErrMemAccOverlap {
		t.Errorf("Expected overlap error, got: %v", err)
	}

	// Region fully containing the first
	acc3 := NewBufferAccessor(0x0000, make([]byte, 2*BlockSizeBytes))
	if err := mapper.AddAccessor(acc3); err != dbg.ErrMemAccOverlap {
		t.Errorf("Expected overlap error for containing region, got: %v", err)
	}

	// Non overlapping region
	acc2.InitAccessor(0x8000, blockBytes(1))
	if err := mapper.AddAccessor(acc2); err != dbg.OK {
		t.Errorf("Failed to set non overlapping memory accessor: %v", err)
	}

	// Empty buffer has no valid range
	if err := mapper.AddAccessor(NewBufferAccessor(0x20000, nil)); err != dbg.ErrMemAccRangeInvalid {
		t.Errorf("Expected invalid range for empty buffer, got: %v", err)
	}
}

func readAndCheckValue(t *testing.T, m Mapper, addr dbg.Addr, expectedVal uint32) {
	t.Helper()
	data, err := m.ReadMemory(addr, 4)
	if err != nil {
		t.Errorf("Failed to read from mapper at 0x%X: %v", uint64(addr), err)
		return
	}
	if got := binary.LittleEndian.Uint32(data); got != expectedVal {
		t.Errorf("Value mismatch at 0x%X. Read 0x%X, expected 0x%X", uint64(addr), got, expectedVal)
	}
}

func TestMapperRouting(t *testing.T) {
	mapper := NewGlobalMapper()
	mapper.AddAccessor(NewBufferAccessor(0x0000, blockBytes(0)))
	mapper.AddAccessor(NewBufferAccessor(0x8000, blockBytes(1)))

	readAndCheckValue(t, mapper, 0x0000, blockVal(0, 0))
	readAndCheckValue(t, mapper, 0x0010, blockVal(0, 4))
	readAndCheckValue(t, mapper, 0x8000, blockVal(1, 0))
	readAndCheckValue(t, mapper, 0x8000+BlockSizeBytes-4, blockVal(1, BlockNumWords-1))
	readAndCheckValue(t, mapper, 0x0020, blockVal(0, 8))
}

func TestReadMemoryFailures(t *testing.T) {
	mapper := NewGlobalMapper()
	mapper.AddAccessor(NewBufferAccessor(0x1000, []byte("hello")))

	tests := []struct {
		name string
		addr dbg.Addr
		size uint64
		code dbg.Err
	}{
		{"unmapped", 0x2000, 4, dbg.ErrMemNacc},
		{"runs off the end", 0x1003, 4, dbg.ErrMemNacc},
		{"too large", 0x1000, 1 << 33, dbg.ErrMemAccBadLen},
		{"wraps address space", ^dbg.Addr(0) - 1, 8, dbg.ErrMemAccBadLen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := mapper.ReadMemory(tt.addr, tt.size)
			if err == nil {
				t.Fatalf("expected failure, got %q", data)
			}
			if got := common.ErrCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}

	data, err := mapper.ReadMemory(0x1000, 5)
	if err != nil {
		t.Fatalf("ReadMemory: %v", err)
	}
	if diff := cmp.Diff([]byte("hello"), data); diff != "" {
		t.Errorf("ReadMemory mismatch (-want +got):\n%s", diff)
	}

	data, err = mapper.ReadMemory(0x9999, 0)
	if err != nil || len(data) != 0 {
		t.Errorf("zero length read = %v, %v; want empty, nil", data, err)
	}
}

type testRange struct {
	sAddr  dbg.Addr
	buffer []byte
}

var accCallbackCount int

func testMemAccCB(ctx any, address dbg.Addr, reqBytes uint32, byteBuffer []byte) (uint32, error) {
	accCallbackCount++
	for _, r := range ctx.([]testRange) {
		size := dbg.Addr(len(r.buffer))
		if address >= r.sAddr && address < r.sAddr+size {
			offset := address - r.sAddr
			n := min(uint32(size-offset), reqBytes)
			copy(byteBuffer, r.buffer[offset:offset+dbg.Addr(n)])
			return n, nil
		}
	}
	return 0, errors.New("address not mapped")
}

func TestCallbackAccessor(t *testing.T) {
	mapper := NewGlobalMapper()
	ranges := []testRange{
		{0x0000, blockBytes(0)},
		{0x8000, blockBytes(1)},
	}

	cbAcc := NewCallbackAccessor(0, 0xFFFFFFFF)
	cbAcc.SetCBIfFn(testMemAccCB, ranges)
	mapper.AddAccessor(cbAcc)

	readAndCheckValue(t, mapper, 0x0004, blockVal(0, 1))
	readAndCheckValue(t, mapper, 0x8008, blockVal(1, 2))

	// host reports a failure
	if _, err := mapper.ReadMemory(0x4000, 4); err == nil {
		t.Error("expected failure for address the host cannot read")
	}

	// unset callback
	bare := NewCallbackAccessor(0, 0xFF)
	buf := make([]byte, 4)
	if _, err := bare.ReadBytes(0, 4, buf); common.ErrCode(err) != dbg.ErrNotInit {
		t.Errorf("unset callback error = %v, want ErrNotInit", err)
	}
}

func TestStopCacheMemCB(t *testing.T) {
	mapper := NewGlobalMapper()
	mapper.EnableCaching(true)

	ranges := []testRange{{0x0000, blockBytes(0)}}
	cbAcc := NewCallbackAccessor(0, 0xFFFFFFFF)
	cbAcc.SetCBIfFn(testMemAccCB, ranges)
	mapper.AddAccessor(cbAcc)

	check := func(addr dbg.Addr, want uint32, expectCallback bool) {
		t.Helper()
		prev := accCallbackCount
		readAndCheckValue(t, mapper, addr, want)
		called := accCallbackCount != prev
		if called != expectCallback {
			t.Errorf("read 0x%X: callback = %v, want %v", uint64(addr), called, expectCallback)
		}
	}

	mapper.SetStopID(1)

	// Initial read - should callback and load cache
	check(0x0000, blockVal(0, 0), true)

	// Same page - served from cache
	check(0x0010, blockVal(0, 4), false)

	// Target ran and stopped again: memory may have changed
	ranges[0].buffer[0x10] = 0xEE
	mapper.SetStopID(2)
	check(0x0010, (blockVal(0, 4)&^0xFF)|0xEE, true)
	check(0x0014, blockVal(0, 5), false)

	// Disabling the cache reads straight through
	mapper.EnableCaching(false)
	check(0x0014, blockVal(0, 5), true)
}

func TestCacheSizes(t *testing.T) {
	c := NewCache()
	if err := c.SetCacheSizes(1, 1, true); err != dbg.ErrInvalidParamVal {
		t.Errorf("strict out of range = %v, want ErrInvalidParamVal", err)
	}
	if err := c.SetCacheSizes(100, 8, true); err != dbg.ErrInvalidParamVal {
		t.Errorf("strict non power of two = %v, want ErrInvalidParamVal", err)
	}
	if err := c.SetCacheSizes(1, 1000, false); err != dbg.OK {
		t.Errorf("clamped sizes = %v, want OK", err)
	}
	if c.pageSize != MinPageSize || c.numPages != MaxPages {
		t.Errorf("clamped to %d x %d, want %d x %d", c.pageSize, c.numPages, MinPageSize, MaxPages)
	}
	if err := c.SetCacheSizes(3000, 8, false); err != dbg.OK || c.pageSize != 2048 {
		t.Errorf("rounded page size = %d (%v), want 2048", c.pageSize, err)
	}
}

func TestFileAccessor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.bin")
	if err := os.WriteFile(path, blockBytes(0), 0o644); err != nil {
		t.Fatal(err)
	}

	fa, err := NewFileAccessor(path, 0x10000, 0, 0)
	if err != nil {
		t.Fatalf("NewFileAccessor: %v", err)
	}

	// second mapping of the same file at another address, from offset 0x100
	fa.AddOffsetRange(0x40000, 0x100, 0x100)

	mapper := NewGlobalMapper()
	if code := mapper.AddAccessor(fa); code != dbg.OK {
		t.Fatalf("AddAccessor: %v", code)
	}
	defer mapper.RemoveAllAccessors()

	readAndCheckValue(t, mapper, 0x10000, blockVal(0, 0))
	readAndCheckValue(t, mapper, 0x10000+BlockSizeBytes-4, blockVal(0, BlockNumWords-1))
	readAndCheckValue(t, mapper, 0x40000, blockVal(0, 0x40))

	// hole between the two regions
	if _, err := mapper.ReadMemory(0x20000, 4); err == nil {
		t.Error("expected failure reading the unmapped hole")
	}

	if _, err := NewFileAccessor(filepath.Join(dir, "missing.bin"), 0, 0, 0); common.ErrCode(err) != dbg.ErrMemAccFileNotFound {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := NewFileAccessor(path, 0, 0x10, BlockSizeBytes); common.ErrCode(err) != dbg.ErrMemAccRangeInvalid {
		t.Errorf("oversized range error = %v", err)
	}

	// a zero size maps the rest of the file after the offset
	tail, err := NewFileAccessor(path, 0x80000, 8, 0)
	if err != nil {
		t.Fatalf("tail accessor: %v", err)
	}
	defer tail.Close()
	if start, end := tail.GetRange(); start != 0x80000 || end != 0x80000+dbg.Addr(BlockSizeBytes)-9 {
		t.Errorf("tail range = 0x%x-0x%x", start, end)
	}
}

func TestRemoveAccessor(t *testing.T) {
	mapper := NewGlobalMapper()
	acc := NewBufferAccessor(0x100, []byte{1, 2, 3, 4})
	mapper.AddAccessor(acc)
	readAndCheckValue(t, mapper, 0x100, 0x04030201)

	if err := mapper.RemoveAccessor(acc); err != dbg.OK {
		t.Fatalf("RemoveAccessor: %v", err)
	}
	if err := mapper.RemoveAccessor(acc); err != dbg.ErrInvalidParamVal {
		t.Errorf("second RemoveAccessor = %v, want ErrInvalidParamVal", err)
	}
	if _, err := mapper.ReadMemory(0x100, 4); err == nil {
		t.Error("read after removal should fail")
	}
}
