package snapshot

import (
	"os"
	"path/filepath"

	"memfmt/internal/common"
	"memfmt/internal/dbg"
	"memfmt/internal/memacc"
	"memfmt/internal/target"
)

const SnapshotINIFilename = "snapshot.ini"

// Reader reads a snapshot directory
type Reader struct {
	SnapshotPath  string
	Logger        common.Logger
	snapshotFound bool
	readOK        bool
	Parsed        *Parsed
}

// NewReader creates a new Reader
func NewReader() *Reader {
	return &Reader{
		Logger: common.NewNoOpLogger(),
	}
}

// SetSnapshotDir sets the directory to read from
func (r *Reader) SetSnapshotDir(dir string) {
	r.SnapshotPath = dir
}

// SnapshotFound returns true if snapshot.ini was found
func (r *Reader) SnapshotFound() bool {
	return r.snapshotFound
}

// SnapshotReadOK returns true if the parse was fully successful
func (r *Reader) SnapshotReadOK() bool {
	return r.readOK
}

// ReadSnapShot reads and parses snapshot.ini
func (r *Reader) ReadSnapShot() error {
	r.snapshotFound = false
	r.readOK = false
	r.Parsed = nil

	iniPath := filepath.Join(r.SnapshotPath, SnapshotINIFilename)
	file, err := os.Open(iniPath)
	if err != nil {
		return common.WrapError(dbg.ErrSnapshotRead, err, "opening %s", iniPath)
	}
	defer file.Close()

	r.snapshotFound = true

	parsed, err := Parse(file)
	if err != nil {
		r.logger().Error(err, "file", iniPath)
		return err
	}
	r.Parsed = parsed
	r.readOK = true
	r.logger().Info("snapshot read", "dir", r.SnapshotPath, "version", parsed.Info.Version,
		"dumps", len(parsed.Dumps), "values", len(parsed.Values))
	return nil
}

// DumpPath resolves a dump file name against the snapshot directory.
func (r *Reader) DumpPath(d DumpDef) string {
	if filepath.IsAbs(d.Path) {
		return d.Path
	}
	return filepath.Join(r.SnapshotPath, d.Path)
}

// BuildMapper maps every dump into a new memory mapper. The caller releases
// the dump files with RemoveAllAccessors.
func (r *Reader) BuildMapper() (*memacc.GlobalMapper, error) {
	if !r.readOK {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrNotInit, "snapshot not read")
	}
	mapper := memacc.NewGlobalMapper()
	for _, d := range r.Parsed.Dumps {
		path := r.DumpPath(d)
		acc, err := memacc.NewFileAccessor(path, d.Address, int64(d.Offset), int64(d.Length))
		if err != nil {
			mapper.RemoveAllAccessors()
			return nil, common.WrapError(dbg.ErrSnapshotRead, err, "[%s]", d.Section)
		}
		if code := mapper.AddAccessor(acc); code != dbg.OK {
			acc.Close()
			mapper.RemoveAllAccessors()
			return nil, common.NewErrorMsg(dbg.ErrSevError, code, "["+d.Section+"] "+path)
		}
		r.logger().Debug("dump mapped", "section", d.Section, "file", path, "accessor", acc.String())
	}
	return mapper, nil
}

// Values creates a handle for every [value] section, reading through reader.
func (r *Reader) Values(layout *target.Layout, reader dbg.MemoryReader) ([]*target.Value, error) {
	if !r.readOK {
		return nil, common.NewErrorMsg(dbg.ErrSevError, dbg.ErrNotInit, "snapshot not read")
	}
	values := make([]*target.Value, 0, len(r.Parsed.Values))
	for _, vd := range r.Parsed.Values {
		v, err := target.NewValue(layout, reader, vd.Name, vd.Type, vd.Address)
		if err != nil {
			return nil, common.WrapError(dbg.ErrSnapshotParse, err, "[%s]", vd.Section)
		}
		values = append(values, v)
	}
	return values, nil
}

func (r *Reader) logger() common.Logger {
	if r.Logger == nil {
		return common.NewNoOpLogger()
	}
	return r.Logger
}
