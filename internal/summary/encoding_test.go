package summary

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodingCodes(t *testing.T) {
	shapes := []Shape{ShapeCircle, ShapePolygon, ShapeBox, ShapeTriangle}
	want := map[Encoding][]uint64{
		EncodingBitflag:    {1, 2, 4, 8},
		EncodingSequential: {1, 2, 3, 4},
		EncodingEnum:       {0, 1, 2},
	}

	for enc, codes := range want {
		var got []uint64
		for _, s := range shapes {
			code, ok := enc.Code(s)
			if !ok {
				continue
			}
			got = append(got, code)
			if back := enc.Shape(code); back != s {
				t.Errorf("%s: Shape(Code(%s)) = %s", enc, s, back)
			}
		}
		if diff := cmp.Diff(codes, got); diff != "" {
			t.Errorf("%s codes mismatch (-want +got):\n%s", enc, diff)
		}
		if _, ok := enc.Code(ShapeUnknown); ok {
			t.Errorf("%s: unknown shape should have no code", enc)
		}
	}

	for _, enc := range []Encoding{EncodingBitflag, EncodingSequential} {
		if enc.Shape(0) != ShapeUnknown {
			t.Errorf("%s: code 0 should be unknown", enc)
		}
	}
	if _, ok := EncodingEnum.Code(ShapeTriangle); ok {
		t.Error("enum: triangle should have no code")
	}
	if got := EncodingEnum.Shape(3); got != ShapeUnknown {
		t.Errorf("enum: Shape(3) = %s", got)
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"", EncodingBitflag, false},
		{"bitflag", EncodingBitflag, false},
		{" Sequential ", EncodingSequential, false},
		{"enum", EncodingEnum, false},
		{"Enum", EncodingEnum, false},
		{"zero-based", EncodingBitflag, true},
	}
	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseEncoding(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDecodeModes(t *testing.T) {
	tests := []struct {
		mode DecodeMode
		in   []byte
		want string
	}{
		{DecodeIgnore, []byte("plain"), "plain"},
		{DecodeIgnore, []byte{0xe2, 0x82, 0xac}, "€"},
		{DecodeIgnore, []byte{'x', 0xc3}, "x"},
		{DecodeIgnore, []byte{0xff, 'o', 'k', 0xfe}, "ok"},
		{DecodeReplace, []byte{'x', 0xc3}, "x�"},
		{DecodeReplace, []byte{'o', 0xff, 'k'}, "o�k"},
		{DecodeReplace, []byte{}, ""},
	}
	for _, tt := range tests {
		if got := tt.mode.Decode(tt.in); got != tt.want {
			t.Errorf("%s.Decode(%x) = %q, want %q", tt.mode, tt.in, got, tt.want)
		}
	}

	for _, s := range []string{"", "ignore", "REPLACE"} {
		if _, err := ParseDecodeMode(s); err != nil {
			t.Errorf("ParseDecodeMode(%q): %v", s, err)
		}
	}
	if _, err := ParseDecodeMode("strict"); err == nil {
		t.Error("ParseDecodeMode(strict) should fail")
	}
}
