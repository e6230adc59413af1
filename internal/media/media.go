// Package media places image files into the site's image folders.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrSameFile is returned by Copy when the source is the destination.
var ErrSameFile = errors.New("source and destination are the same file")

// ImageName returns the stored filename for the index-th image (1-based)
// of a project: "<id>-<index><ext>", extension lowercased.
func ImageName(id string, index int, src string) string {
	return fmt.Sprintf("%s-%d%s", id, index, strings.ToLower(filepath.Ext(src)))
}

// Copier copies image files on a filesystem.
type Copier struct {
	fs afero.Fs
}

// NewCopier returns a Copier operating on fs.
func NewCopier(fs afero.Fs) *Copier {
	return &Copier{fs: fs}
}

// StagingName is the temporary name an image is copied to before it is
// renamed into place.
func StagingName(name string) string {
	return "." + name + ".tmp"
}

// Copy copies src into dstDir under name, creating dstDir if needed and
// replacing any existing file with the same name. Copying a file onto
// itself fails with ErrSameFile and leaves it untouched.
func (c *Copier) Copy(src, dstDir, name string) error {
	dst := filepath.Join(dstDir, name)
	if samePath(src, dst) {
		return fmt.Errorf("copying %s: %w", src, ErrSameFile)
	}

	in, err := c.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	// Covers links and other aliases on a real filesystem.
	if dstInfo, err := c.fs.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("copying %s: %w", src, ErrSameFile)
	}

	if err := c.fs.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dstDir, err)
	}

	out, err := c.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}

// MkdirAll creates dir on the copier's filesystem.
func (c *Copier) MkdirAll(dir string) error {
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// Rename moves from to to inside dir, replacing to.
func (c *Copier) Rename(dir, from, to string) error {
	oldPath, newPath := filepath.Join(dir, from), filepath.Join(dir, to)
	if err := c.fs.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

// Remove deletes name from dir. A missing file is not an error.
func (c *Copier) Remove(dir, name string) error {
	path := filepath.Join(dir, name)
	if err := c.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
