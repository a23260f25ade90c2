package summary

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Shape is a decoded volume discriminant.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeCircle
	ShapePolygon
	ShapeBox
	ShapeTriangle
)

func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "CIRCLE"
	case ShapePolygon:
		return "POLYGON"
	case ShapeBox:
		return "BOX"
	case ShapeTriangle:
		return "TRIANGLE"
	default:
		return "UNKNOWN"
	}
}

// Encoding selects how the target numbers its volume kinds.
type Encoding int

const (
	// EncodingBitflag gives each kind its own bit, so collision code can
	// switch on the OR of two kinds.
	EncodingBitflag Encoding = iota
	// EncodingSequential numbers the kinds from 1.
	EncodingSequential
	// EncodingEnum follows the target's volume_type declaration order:
	// circle is 0, polygon 1, box 2. It has no triangle and no code left
	// for an unset volume.
	EncodingEnum
)

var shapeCodes = map[Encoding][]struct {
	code  uint64
	shape Shape
}{
	EncodingBitflag: {
		{1 << 0, ShapeCircle},
		{1 << 1, ShapePolygon},
		{1 << 2, ShapeBox},
		{1 << 3, ShapeTriangle},
	},
	EncodingSequential: {
		{1, ShapeCircle},
		{2, ShapePolygon},
		{3, ShapeBox},
		{4, ShapeTriangle},
	},
	EncodingEnum: {
		{0, ShapeCircle},
		{1, ShapePolygon},
		{2, ShapeBox},
	},
}

func (e Encoding) String() string {
	switch e {
	case EncodingBitflag:
		return "bitflag"
	case EncodingSequential:
		return "sequential"
	case EncodingEnum:
		return "enum"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding accepts "bitflag", "sequential" or "enum". Empty means bitflag.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bitflag":
		return EncodingBitflag, nil
	case "sequential":
		return EncodingSequential, nil
	case "enum":
		return EncodingEnum, nil
	}
	return EncodingBitflag, fmt.Errorf("unknown volume encoding %q", s)
}

// Shape maps a discriminant to its kind. Unlisted values are unknown, and so is 0
// everywhere but EncodingEnum.
func (e Encoding) Shape(code uint64) Shape {
	for _, c := range shapeCodes[e] {
		if c.code == code {
			return c.shape
		}
	}
	return ShapeUnknown
}

// Code is the discriminant stored for s. ok is false for ShapeUnknown and for
// kinds the encoding has no code for.
func (e Encoding) Code(s Shape) (code uint64, ok bool) {
	for _, c := range shapeCodes[e] {
		if c.shape == s {
			return c.code, true
		}
	}
	return 0, false
}

// DecodeMode selects what happens to bytes that are not valid UTF-8.
type DecodeMode int

const (
	// DecodeIgnore drops invalid bytes.
	DecodeIgnore DecodeMode = iota
	// DecodeReplace turns each invalid sequence into U+FFFD.
	DecodeReplace
)

func (m DecodeMode) String() string {
	if m == DecodeReplace {
		return "replace"
	}
	return "ignore"
}

// ParseDecodeMode accepts "ignore" or "replace". Empty means ignore.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return DecodeIgnore, nil
	case "replace":
		return DecodeReplace, nil
	}
	return DecodeIgnore, fmt.Errorf("unknown decode mode %q", s)
}

// Decode converts raw target bytes to text. It never fails.
func (m DecodeMode) Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	if m == DecodeReplace {
		s, _, err := transform.Bytes(runes.ReplaceIllFormed(), b)
		if err == nil {
			return string(s)
		}
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return strings.ToValidUTF8(string(b), "")
}
