package fsys

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/mmap"
)

// FS is the set of filesystem queries the asset cache relies on.
type FS interface {
	Exists(path string) bool
	ModTime(path string) (time.Time, error)
	// InUse reports whether the file cannot currently be opened for reading,
	// e.g. because an editor is still writing it.
	InUse(path string) bool
	ReadFile(path string) ([]byte, error)
}

// OS implements FS on top of the host filesystem.
type OS struct{}

// Exists reports whether path names an existing regular file.
func (OS) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ModTime returns the last write time of path.
func (OS) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("fsys: stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}

// InUse is best effort: a file that can be opened for reading is not in use.
func (OS) InUse(path string) bool {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return true
	}
	f.Close()
	return false
}

// ReadFile memory-maps path and copies its contents out, so the mapping is
// released before returning.
func (OS) ReadFile(path string) ([]byte, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fsys: open %s: %w", path, err)
	}
	defer r.Close()

	buf := make([]byte, r.Len())
	if len(buf) == 0 {
		return buf, nil
	}
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("fsys: read %s: %w", path, err)
	}
	return buf, nil
}
