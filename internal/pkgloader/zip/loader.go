// Package zip implements pkgloader.Loader over a zip archive by
// extracting it into a scratch directory once, then delegating to the
// extracted tree. archive/zip is the one stdlib choice in the loader
// layer: none of the teacher's or the pack's dependencies ship a zip
// reader, and the format itself (problem packages distributed as .zip)
// is fixed by upstream judge conventions, not something a third-party
// library would give a better API for.
package zip

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"simjudge/internal/pkgloader"
	"simjudge/internal/pkgloader/dir"
	apperrors "simjudge/pkg/errors"
)

// Loader reads a problem package out of a zip archive.
type Loader struct {
	*dir.Loader
	extractRoot string
}

// Open extracts archivePath under scratchRoot and returns a Loader over
// its auto-detected main directory.
func Open(archivePath, scratchRoot string) (*Loader, error) {
	extractRoot := filepath.Join(scratchRoot, "pkg-"+uuid.NewString())
	if err := os.MkdirAll(extractRoot, 0755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.IOError)
	}

	if err := extractAll(archivePath, extractRoot); err != nil {
		os.RemoveAll(extractRoot)
		return nil, err
	}

	inner, err := dir.Open(extractRoot)
	if err != nil {
		os.RemoveAll(extractRoot)
		return nil, err
	}

	return &Loader{Loader: inner, extractRoot: extractRoot}, nil
}

// Close removes the scratch extraction directory.
func (l *Loader) Close() error {
	return os.RemoveAll(l.extractRoot)
}

func extractAll(archivePath, destRoot string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.PackageArchiveBroken)
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(destRoot, f.Name)
		if !isWithin(destRoot, target) {
			return apperrors.Newf(apperrors.PackageArchiveBroken, "archive entry %q escapes extraction root", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return apperrors.Wrap(err, apperrors.IOError)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return apperrors.Wrap(err, apperrors.IOError)
		}

		if err := extractOne(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractOne(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return apperrors.Wrap(err, apperrors.PackageArchiveBroken)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode().Perm()|0600)
	if err != nil {
		return apperrors.Wrap(err, apperrors.IOError)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return apperrors.Wrap(err, apperrors.IOError)
	}
	return nil
}

func isWithin(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if filepath.IsAbs(rel) || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

var _ pkgloader.Loader = (*Loader)(nil)
