package pkgloader

import (
	"os"
	"path/filepath"
	"strings"

	apperrors "simjudge/pkg/errors"
)

const simfileBasename = "simfile"

// FindMainDirectory locates the package's main directory under root: the
// root itself if it directly contains a simfile, or the unique immediate
// subdirectory that does. More than one candidate, or none, is an error
// rather than a guess.
func FindMainDirectory(root string) (string, error) {
	if hasSimfile(root) {
		return root, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.PackageLoadFailed)
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if hasSimfile(dir) {
			candidates = append(candidates, dir)
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", apperrors.New(apperrors.MainDirectoryMissing)
	default:
		return "", apperrors.Newf(apperrors.MainDirectoryMissing, "%d candidate main directories found", len(candidates))
	}
}

func hasSimfile(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), simfileBasename) {
			return true
		}
	}
	return false
}
