package lister

import (
	"fmt"
	"io"
	"os"
	"strings"

	"memfmt/internal/common"
	"memfmt/internal/config"
	"memfmt/internal/dbg"
	"memfmt/internal/memacc"
	"memfmt/internal/registry"
	"memfmt/internal/snapshot"
	"memfmt/internal/summary"
)

// Config mirrors the command line arguments of memfmt_lister
type Config struct {
	SnapshotDir  string
	ConfigFile   string // optional TOML or YAML settings
	Children     bool   // also list synthetic children
	Debug        bool   // force diagnostic logging on
	Pid          int    // read a live process instead of the snapshot dumps
	OutputWriter io.Writer
	LogWriter    io.Writer
	Register     *registry.SummaryRegister // nil uses the builtin register
	Lookup       func(string) (string, bool)
}

// Run prints one summary line for every value in the snapshot.
func Run(cfg Config) error {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stdout
	}
	logOut := cfg.LogWriter
	if logOut == nil {
		logOut = os.Stderr
	}
	reg := cfg.Register
	if reg == nil {
		reg = registry.GetSummaryRegister()
	}
	lookup := cfg.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	settings, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := settings.ApplyEnv(lookup); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	settings.Debug = settings.Debug || cfg.Debug

	ctx, err := settings.Context(logOut)
	if err != nil {
		return fmt.Errorf("failed to build summary context: %w", err)
	}

	fmt.Fprintln(w, "Memory Summary Lister")
	fmt.Fprintln(w, "---------------------")
	fmt.Fprintf(w, "Memory Summary Lister : reading snapshot from path %s\n", cfg.SnapshotDir)

	reader := snapshot.NewReader()
	reader.Logger = ctx.Logger
	reader.SetSnapshotDir(cfg.SnapshotDir)
	if err := reader.ReadSnapShot(); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if desc := reader.Parsed.Info.Description; desc != "" {
		fmt.Fprintf(w, "Snapshot : %s\n", desc)
	}

	mapper, err := buildMapper(reader, cfg.Pid)
	if err != nil {
		return err
	}
	defer mapper.RemoveAllAccessors()
	if cfg.Pid != 0 {
		fmt.Fprintf(w, "Reading live process %d\n", cfg.Pid)
	}

	values, err := reader.Values(ctx.Layout, mapper)
	if err != nil {
		return fmt.Errorf("failed to create values: %w", err)
	}
	fmt.Fprintf(w, "Encoding : %s; %d values\n\n", ctx.Encoding, len(values))

	for _, v := range values {
		printValue(w, reg, v, ctx, cfg.Children)
	}
	return nil
}

func buildMapper(reader *snapshot.Reader, pid int) (*memacc.GlobalMapper, error) {
	if pid == 0 {
		mapper, err := reader.BuildMapper()
		if err != nil {
			return nil, fmt.Errorf("failed to map memory dumps: %w", err)
		}
		// a snapshot is a single stop
		mapper.EnableCaching(true)
		mapper.SetStopID(1)
		return mapper, nil
	}

	acc, err := memacc.NewProcessAccessor(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}
	mapper := memacc.NewGlobalMapper()
	if code := mapper.AddAccessor(acc); code != dbg.OK {
		return nil, fmt.Errorf("failed to map process %d: %w", pid, common.NewError(dbg.ErrSevError, code))
	}
	return mapper, nil
}

func printValue(w io.Writer, reg *registry.SummaryRegister, v dbg.Value, ctx *summary.Context, children bool) {
	p, err := reg.NewProvider(v, ctx)
	if err != nil {
		ctx.Logger.Error(err, "value", v.Name())
		fmt.Fprintf(w, "%s (%s) = <no summary>\n", v.Name(), v.TypeName())
		return
	}
	p.Update()
	fmt.Fprintf(w, "%s (%s) = %s\n", v.Name(), v.TypeName(), p.Summary())

	cp, ok := p.(summary.ChildProvider)
	if !children || !ok {
		return
	}
	for i := 0; i < cp.NumChildren(); i++ {
		c, ok := cp.ChildAtIndex(i)
		if !ok {
			break
		}
		fmt.Fprintf(w, "%s%s = %s\n", strings.Repeat(" ", 4), c.Name, c.Value)
	}
}
