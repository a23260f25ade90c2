package lister

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memfmt/internal/dbg"
	"memfmt/internal/registry"
	"memfmt/internal/summary"
)

const snapshotIni = `[snapshot]
version=1.0
description=lister test

[dump0]
file=heap.bin
address=0x10000

[value0]
name=circle
type=volume
address=0x10000

[value1]
name=box
type=volume
address=0x10010

[value2]
name=poly
type=volume
address=0x10020

[value3]
name=tri
type=volume
address=0x10030

[value4]
name=title
type=string
address=0x10040

[value5]
name=empty
type=string
address=0x10050

[value6]
name=broken
type=string
address=0x10060

[value7]
name=sb
type=string_builder *
address=0x10070
`

func heapImage() []byte {
	heap := make([]byte, 0xc0)
	le := binary.LittleEndian
	le.PutUint32(heap[0x00:], 1)
	le.PutUint32(heap[0x04:], math.Float32bits(1.5))
	le.PutUint32(heap[0x10:], 4)
	le.PutUint32(heap[0x14:], math.Float32bits(2))
	le.PutUint32(heap[0x18:], math.Float32bits(3.5))
	le.PutUint32(heap[0x20:], 2)
	le.PutUint64(heap[0x24:], 0x10100)
	le.PutUint32(heap[0x2c:], 3)
	le.PutUint32(heap[0x30:], 8)
	le.PutUint64(heap[0x40:], 0x100a0)
	le.PutUint64(heap[0x48:], 5)
	le.PutUint64(heap[0x50:], 0x100a0)
	le.PutUint64(heap[0x58:], 0)
	le.PutUint64(heap[0x60:], 0x900000)
	le.PutUint64(heap[0x68:], 4)
	le.PutUint64(heap[0x70:], 0x10040)
	le.PutUint64(heap[0x78:], 0)
	le.PutUint64(heap[0x80:], 3)
	copy(heap[0xa0:], "hello")
	return heap
}

func writeSnapshot(t *testing.T, ini string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snapshot.ini"), []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "heap.bin"), heapImage(), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func noEnv(string) (string, bool) {
	return "", false
}

func TestRunGolden(t *testing.T) {
	dir := writeSnapshot(t, snapshotIni)
	golden, err := os.ReadFile(filepath.Join("testdata", "basic.golden"))
	if err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	err = Run(Config{
		SnapshotDir:  dir,
		Children:     true,
		OutputWriter: &out,
		LogWriter:    &logs,
		Lookup:       noEnv,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := strings.ReplaceAll(out.String(), dir, "<dir>")
	if diff := cmp.Diff(string(golden), got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if logs.Len() != 0 {
		t.Errorf("logging without -debug:\n%s", logs.String())
	}
}

func TestRunSequentialConfig(t *testing.T) {
	dir := writeSnapshot(t, snapshotIni)
	cfgPath := filepath.Join(t.TempDir(), "memfmt.yaml")
	if err := os.WriteFile(cfgPath, []byte("encoding: sequential\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	err := Run(Config{
		SnapshotDir:  dir,
		ConfigFile:   cfgPath,
		Debug:        true,
		OutputWriter: &out,
		LogWriter:    &logs,
		Lookup:       noEnv,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// under sequential numbering 4 is a triangle and 8 is nothing
	for _, line := range []string{
		"circle (volume) = CIRCLE { radius = 1.5 }",
		"box (volume) = UNKNOWN VOLUME",
		"poly (volume) = POLYGON { vertexCount = 3 }",
		"tri (volume) = UNKNOWN VOLUME",
	} {
		if !strings.Contains(out.String(), line+"\n") {
			t.Errorf("missing line %q in:\n%s", line, out.String())
		}
	}
	if strings.Contains(out.String(), "    radius") {
		t.Error("children listed without -children")
	}
	if !strings.Contains(logs.String(), "snapshot read") {
		t.Errorf("debug log missing snapshot read:\n%s", logs.String())
	}
}

func TestRunEnumConfig(t *testing.T) {
	heap := heapImage()
	le := binary.LittleEndian
	// volume_type declaration order: circle 0, polygon 1, box 2
	le.PutUint32(heap[0x00:], 0)
	le.PutUint32(heap[0x10:], 2)
	le.PutUint32(heap[0x20:], 1)
	dir := writeSnapshot(t, snapshotIni)
	if err := os.WriteFile(filepath.Join(dir, "heap.bin"), heap, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := Run(Config{
		SnapshotDir:  dir,
		OutputWriter: &out,
		LogWriter:    &bytes.Buffer{},
		Lookup: func(key string) (string, bool) {
			if key == "MEMFMT_ENCODING" {
				return "enum", true
			}
			return "", false
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, line := range []string{
		"Encoding : enum; 8 values",
		"circle (volume) = CIRCLE { radius = 1.5 }",
		"box (volume) = BOX { width = 2, height = 3.5 }",
		"poly (volume) = POLYGON { vertexCount = 3 }",
		"tri (volume) = UNKNOWN VOLUME",
	} {
		if !strings.Contains(out.String(), line+"\n") {
			t.Errorf("missing line %q in:\n%s", line, out.String())
		}
	}
}

func TestRunUnregisteredType(t *testing.T) {
	dir := writeSnapshot(t, snapshotIni)
	reg := registry.NewSummaryRegister()
	reg.RegisterSummaryTypeByName(dbg.BuiltinSumVolume, func(v dbg.Value, ctx *summary.Context) summary.Provider {
		return summary.NewVolumeProvider(v, ctx)
	})

	var out bytes.Buffer
	err := Run(Config{
		SnapshotDir:  dir,
		OutputWriter: &out,
		LogWriter:    &bytes.Buffer{},
		Register:     reg,
		Lookup:       noEnv,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "title (string) = <no summary>\n") {
		t.Errorf("unregistered type not reported:\n%s", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	if err := Run(Config{SnapshotDir: t.TempDir(), OutputWriter: &bytes.Buffer{}, Lookup: noEnv}); err == nil {
		t.Error("empty directory should fail")
	}

	dir := writeSnapshot(t, snapshotIni)
	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("pointer_size = 3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Run(Config{SnapshotDir: dir, ConfigFile: bad, OutputWriter: &bytes.Buffer{}, Lookup: noEnv}); err == nil {
		t.Error("invalid config should fail")
	}

	env := func(k string) (string, bool) {
		if k == "MEMFMT_ENCODING" {
			return "gray", true
		}
		return "", false
	}
	if err := Run(Config{SnapshotDir: dir, OutputWriter: &bytes.Buffer{}, Lookup: env}); err == nil {
		t.Error("invalid environment should fail")
	}
}
