// Package pkgloader abstracts reading a problem package, whether it is
// laid out as a plain directory or shipped as a zip archive (extracted
// into a temporary directory first). Either way the "main directory" is
// auto-detected: the root itself if it contains a simfile, otherwise the
// unique immediate subdirectory that does; none or several is an error.
package pkgloader

import (
	"io"
	"os"
	"path/filepath"

	apperrors "simjudge/pkg/errors"
)

// Loader reads files out of a problem package by path relative to the
// package's main directory.
type Loader interface {
	// LoadAsStr reads relPath's full contents as a string.
	LoadAsStr(relPath string) (string, error)
	// LoadAsFile returns a host filesystem path to relPath's contents.
	// For directory packages this is the real path; for archives it is
	// wherever the file was extracted to.
	LoadAsFile(relPath string) (string, error)
	// LoadIntoDestFile copies relPath's contents into destPath.
	LoadIntoDestFile(relPath, destPath string) error
	// Exists reports whether relPath exists under the main directory.
	Exists(relPath string) bool
	// ListFiles returns every regular file under the main directory, as
	// slash-separated paths relative to it, in deterministic (sorted)
	// order. Conver uses this to scan for tests, checker candidates, and
	// statement files without knowing in advance what the package ships.
	ListFiles() ([]string, error)
	// Root returns the host filesystem path of the main directory itself.
	Root() string
	// Close releases any temporary resources (extracted archives).
	Close() error
}

// CopyFile copies srcPath's contents to destPath, creating destPath's
// parent directory if needed.
func CopyFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.PackageLoadFailed)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return apperrors.Wrap(err, apperrors.IOError)
	}
	dst, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apperrors.Wrap(err, apperrors.IOError)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return apperrors.Wrap(err, apperrors.IOError)
	}
	return nil
}
