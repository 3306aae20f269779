package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileCache keeps each table as <dir>/<name>.csv.
type FileCache struct {
	dir string
}

// NewFileCache returns a cache rooted at dir. The directory is created on
// the first Put.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

// Path returns the file holding table name.
func (c *FileCache) Path(name string) string {
	return filepath.Join(c.dir, sanitize(name)+".csv")
}

// Get implements Cache.
func (c *FileCache) Get(ctx context.Context, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}
	f, err := os.Open(c.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Table{}, fmt.Errorf("%w: %s", ErrCacheMiss, name)
	}
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	return ReadCSV(name, f)
}

// Put implements Cache. The file is written to a temporary name and
// renamed so readers never see a partial table.
func (c *FileCache) Put(ctx context.Context, t Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, sanitize(t.Name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	return os.Rename(tmp.Name(), c.Path(t.Name))
}

// sanitize keeps table names from escaping the cache directory.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}
