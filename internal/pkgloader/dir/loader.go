// Package dir implements pkgloader.Loader over a plain directory.
package dir

import (
	"os"
	"path/filepath"
	"sort"

	"simjudge/internal/pkgloader"
	apperrors "simjudge/pkg/errors"
)

// Loader reads a problem package directly off disk.
type Loader struct {
	mainDir string
}

// Open resolves root's main directory and returns a Loader over it.
func Open(root string) (*Loader, error) {
	mainDir, err := pkgloader.FindMainDirectory(root)
	if err != nil {
		return nil, err
	}
	return &Loader{mainDir: mainDir}, nil
}

func (l *Loader) resolve(relPath string) string {
	return filepath.Join(l.mainDir, relPath)
}

// LoadAsStr implements pkgloader.Loader.
func (l *Loader) LoadAsStr(relPath string) (string, error) {
	data, err := os.ReadFile(l.resolve(relPath))
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.PackageLoadFailed, "read %q", relPath)
	}
	return string(data), nil
}

// LoadAsFile implements pkgloader.Loader.
func (l *Loader) LoadAsFile(relPath string) (string, error) {
	path := l.resolve(relPath)
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.Wrapf(err, apperrors.PackageLoadFailed, "stat %q", relPath)
	}
	return path, nil
}

// LoadIntoDestFile implements pkgloader.Loader.
func (l *Loader) LoadIntoDestFile(relPath, destPath string) error {
	return pkgloader.CopyFile(l.resolve(relPath), destPath)
}

// Exists implements pkgloader.Loader.
func (l *Loader) Exists(relPath string) bool {
	_, err := os.Stat(l.resolve(relPath))
	return err == nil
}

// ListFiles implements pkgloader.Loader.
func (l *Loader) ListFiles() ([]string, error) {
	var out []string
	err := filepath.WalkDir(l.mainDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(l.mainDir, path)
		if relErr != nil {
			return relErr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.PackageLoadFailed)
	}
	sort.Strings(out)
	return out, nil
}

// Root implements pkgloader.Loader.
func (l *Loader) Root() string { return l.mainDir }

// Close implements pkgloader.Loader; directory loaders own no temp state.
func (l *Loader) Close() error { return nil }
