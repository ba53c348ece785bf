package language

import (
	"path/filepath"
	"strings"
	"sync"

	apperrors "simjudge/pkg/errors"
)

// Registry resolves a submitted filename to the Suite that compiles and
// runs it.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Suite
	byID  map[string]Suite
}

// NewRegistry creates an empty registry. Use Register or
// NewDefaultRegistry to populate it.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]Suite),
		byID:  make(map[string]Suite),
	}
}

// NewDefaultRegistry returns a registry preloaded with the built-in
// language suites (C, C++, Pascal, Python, Rust).
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, suite := range builtinSuites() {
		r.Register(suite)
	}
	return r
}

// Register adds or replaces a suite, indexing it by every declared
// extension and by its language ID.
func (r *Registry) Register(suite Suite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[suite.Spec.ID] = suite
	for _, ext := range suite.Spec.Extensions {
		r.byExt[normalizeExt(ext)] = suite
	}
}

// Resolve selects a suite by the submitted file's extension. Selection
// is a pure function of the filename: the same name always resolves to
// the same suite regardless of file contents.
func (r *Registry) Resolve(filename string) (Suite, error) {
	ext := normalizeExt(filepath.Ext(filename))
	r.mu.RLock()
	defer r.mu.RUnlock()
	suite, ok := r.byExt[ext]
	if !ok {
		return Suite{}, apperrors.Newf(apperrors.LanguageNotSupported, "no language registered for extension %q", ext)
	}
	return suite, nil
}

// ByID looks up a suite by its language identifier (used when the
// simfile or CLI names the language explicitly rather than inferring it
// from a filename).
func (r *Registry) ByID(id string) (Suite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	suite, ok := r.byID[id]
	if !ok {
		return Suite{}, apperrors.Newf(apperrors.LanguageNotSupported, "unknown language id %q", id)
	}
	return suite, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
