// Package config loads the summarizer settings from a TOML or YAML file.
//
// Every setting has a default, so a missing file or an empty one yields a
// usable configuration. Environment variables prefixed MEMFMT_ override the
// file.
package config

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
	"memfmt/internal/summary"
	"memfmt/internal/target"
)

// Format is a configuration file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatForPath picks the syntax from the file extension. Anything that is
// not .yaml or .yml is read as TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// Config holds the summarizer settings.
type Config struct {
	Debug         bool   `toml:"debug" yaml:"debug"`
	Encoding      string `toml:"encoding" yaml:"encoding"`
	Decode        string `toml:"decode" yaml:"decode"`
	MaxReadLength uint64 `toml:"max_read_length" yaml:"max_read_length"`
	ByteOrder     string `toml:"byte_order" yaml:"byte_order"`
	PointerSize   uint64 `toml:"pointer_size" yaml:"pointer_size"`
	DwarfBinary   string `toml:"dwarf_binary" yaml:"dwarf_binary"`
}

// Default returns the settings for the target's LP64 little-endian build.
func Default() Config {
	return Config{
		Encoding:      summary.EncodingBitflag.String(),
		Decode:        summary.DecodeIgnore.String(),
		MaxReadLength: summary.DefaultMaxReadLength,
		ByteOrder:     "little",
		PointerSize:   8,
	}
}

// Load reads path over the defaults. A path that does not exist is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, common.WrapError(dbg.ErrFileError, err, "reading config file %s", path)
	}
	return parse(path, FormatForPath(path), data)
}

// LoadFromReader reads a configuration of the given format over the defaults.
func LoadFromReader(r io.Reader, format Format) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Default(), common.WrapError(dbg.ErrFileError, err, "reading config")
	}
	return parse("<reader>", format, data)
}

func parse(source string, format Format, data []byte) (Config, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	}
	if err != nil {
		return Default(), common.WrapError(dbg.ErrConfigParse, err, "%s", source)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), common.WrapError(dbg.ErrConfigParse, err, "%s", source)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from MEMFMT_* variables found through lookup,
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MEMFMT_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return common.WrapError(dbg.ErrConfigParse, err, "MEMFMT_DEBUG")
		}
		c.Debug = b
	}
	if v, ok := lookup("MEMFMT_ENCODING"); ok {
		c.Encoding = v
	}
	if v, ok := lookup("MEMFMT_DECODE"); ok {
		c.Decode = v
	}
	if v, ok := lookup("MEMFMT_MAX_READ_LENGTH"); ok {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return common.WrapError(dbg.ErrConfigParse, err, "MEMFMT_MAX_READ_LENGTH")
		}
		c.MaxReadLength = n
	}
	if v, ok := lookup("MEMFMT_DWARF_BINARY"); ok {
		c.DwarfBinary = v
	}
	if err := c.Validate(); err != nil {
		return common.WrapError(dbg.ErrConfigParse, err, "environment")
	}
	return nil
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if _, err := summary.ParseEncoding(c.Encoding); err != nil {
		return err
	}
	if _, err := summary.ParseDecodeMode(c.Decode); err != nil {
		return err
	}
	if _, err := c.byteOrder(); err != nil {
		return err
	}
	if c.PointerSize != 4 && c.PointerSize != 8 {
		return fmt.Errorf("pointer_size must be 4 or 8, got %d", c.PointerSize)
	}
	if c.MaxReadLength == 0 {
		return errors.New("max_read_length must be positive")
	}
	return nil
}

func (c *Config) byteOrder() (binary.ByteOrder, error) {
	switch strings.ToLower(c.ByteOrder) {
	case "", "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("byte_order must be little or big, got %q", c.ByteOrder)
}

// Layout returns the target layout, resolved from DwarfBinary when set.
func (c *Config) Layout() (*target.Layout, error) {
	order, err := c.byteOrder()
	if err != nil {
		return nil, err
	}
	layout, err := target.DefaultLayout(c.PointerSize, order)
	if err != nil {
		return nil, err
	}
	if c.DwarfBinary == "" {
		return layout, nil
	}
	return target.ResolveDWARF(c.DwarfBinary, layout)
}

// Context builds the summary context. Diagnostics go to logOut when Debug is set.
func (c *Config) Context(logOut io.Writer) (*summary.Context, error) {
	if err := c.Validate(); err != nil {
		return nil, common.WrapError(dbg.ErrConfigParse, err, "config")
	}
	layout, err := c.Layout()
	if err != nil {
		return nil, err
	}
	enc, _ := summary.ParseEncoding(c.Encoding)
	mode, _ := summary.ParseDecodeMode(c.Decode)

	return &summary.Context{
		Layout:        layout,
		Encoding:      enc,
		Decode:        mode,
		MaxReadLength: c.MaxReadLength,
		Logger:        common.NewLogger(c.Debug, logOut, common.SeverityDebug),
	}, nil
}
