package shots

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/util"
)

type dirState int

const (
	dirStale dirState = iota
	dirReady
)

// OutputDir is the run-scoped image location. It starts stale and only
// becomes ready through Reset, which deletes and recreates it.
type OutputDir struct {
	path      string
	minFree   uint64
	protected []string
	state     dirState
}

// NewOutputDir returns a stale output location. minFreeBytes of 0 disables
// the free space check.
func NewOutputDir(path string, minFreeBytes uint64) *OutputDir {
	return &OutputDir{path: path, minFree: minFreeBytes}
}

// Path returns the directory path.
func (d *OutputDir) Path() string { return d.path }

// Protect makes Reset refuse to run while any of paths lies inside the
// directory.
func (d *OutputDir) Protect(paths ...string) {
	d.protected = append(d.protected, paths...)
}

// Ready reports whether Reset has succeeded.
func (d *OutputDir) Ready() bool { return d.state == dirReady }

// Reset clears the directory and recreates it empty.
func (d *OutputDir) Reset() error {
	d.state = dirStale

	clean := filepath.Clean(d.path)
	if d.path == "" || clean == "." || util.IsFilesystemRoot(clean) {
		return serrors.NewOutputWriteError("reset", d.path, fmt.Errorf("refusing to clear this location"))
	}

	if wd, err := os.Getwd(); err == nil && util.Contains(clean, wd) {
		return serrors.NewOutputWriteError("reset", d.path, fmt.Errorf("contains the working directory"))
	}
	for _, p := range d.protected {
		if util.Contains(clean, p) {
			return serrors.NewOutputWriteError("reset", d.path, fmt.Errorf("contains %s", p))
		}
	}

	if info, err := os.Stat(clean); err == nil && !info.IsDir() {
		return serrors.NewOutputWriteError("reset", d.path, fmt.Errorf("exists and is not a directory"))
	}

	if d.minFree > 0 {
		if free, ok := util.FreeSpace(existingAncestor(clean)); ok && free < d.minFree {
			return serrors.NewOutputWriteError("reset", d.path,
				fmt.Errorf("only %s free, need %s", util.FormatBytes(free), util.FormatBytes(d.minFree)))
		}
	}

	if err := os.RemoveAll(clean); err != nil {
		return serrors.NewOutputWriteError("reset", d.path, err)
	}
	if err := os.MkdirAll(clean, 0o755); err != nil {
		return serrors.NewOutputWriteError("reset", d.path, err)
	}

	d.state = dirReady
	return nil
}

// ImagePath returns the file name for shot id.
func (d *OutputDir) ImagePath(id int, format config.ImageFormat) string {
	return filepath.Join(d.path, ImageName(id, format))
}

// ImageName returns the zero-padded base name for shot id.
func ImageName(id int, format config.ImageFormat) string {
	return fmt.Sprintf("shot_%03d%s", id, format.Extension())
}

func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
