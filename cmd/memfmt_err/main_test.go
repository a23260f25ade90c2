package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintErrorList(t *testing.T) {
	var out bytes.Buffer
	printErrorList(&out)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// title, blank line, then one line per code below the end marker
	if got, want := len(lines), 2+20; got != want {
		t.Fatalf("got %d lines, want %d:\n%s", got, want, out.String())
	}
	if lines[2] != "0: MEMFMT_OK - No Error." {
		t.Errorf("first code line = %q", lines[2])
	}
	if !strings.HasPrefix(lines[len(lines)-1], "19: MEMFMT_ERR_SUMREG_NAME_UNKNOWN") {
		t.Errorf("last code line = %q", lines[len(lines)-1])
	}
}
