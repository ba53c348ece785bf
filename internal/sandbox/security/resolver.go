package security

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "simjudge/pkg/errors"
)

// FileResolver resolves profile names against a directory of
// "<name>.json" isolation-profile descriptors, loaded lazily and cached.
// It is the judge core's analogue of the teacher's local JSON-backed
// config repository: no database, just files under a root directory.
type FileResolver struct {
	dir string

	mu    sync.RWMutex
	cache map[string]IsolationProfile
}

// NewFileResolver creates a resolver rooted at dir.
func NewFileResolver(dir string) *FileResolver {
	return &FileResolver{dir: dir, cache: make(map[string]IsolationProfile)}
}

// Resolve returns the isolation profile named by profile, loading and
// caching it from "<dir>/<profile>.json" on first use.
func (r *FileResolver) Resolve(profile string) (IsolationProfile, error) {
	if profile == "" {
		return IsolationProfile{}, apperrors.New(apperrors.ProfileMissing)
	}

	r.mu.RLock()
	cached, ok := r.cache[profile]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := filepath.Join(r.dir, profile+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return IsolationProfile{}, apperrors.Wrapf(err, apperrors.ProfileMissing, "read isolation profile %q", profile)
	}

	var loaded IsolationProfile
	if err := json.Unmarshal(data, &loaded); err != nil {
		return IsolationProfile{}, apperrors.Wrapf(err, apperrors.ConfigInvalid, "parse isolation profile %q", profile)
	}
	if loaded.Name == "" {
		loaded.Name = profile
	}

	r.mu.Lock()
	r.cache[profile] = loaded
	r.mu.Unlock()
	return loaded, nil
}

// StaticResolver resolves against an in-memory map, useful for tests and
// for embedding a handful of built-in profiles (e.g. "unrestricted" for
// the default checker) without shipping JSON files.
type StaticResolver map[string]IsolationProfile

// Resolve implements engine.ProfileResolver.
func (r StaticResolver) Resolve(profile string) (IsolationProfile, error) {
	p, ok := r[profile]
	if !ok {
		return IsolationProfile{}, apperrors.Newf(apperrors.ProfileMissing, "unknown isolation profile %q", profile)
	}
	return p, nil
}
