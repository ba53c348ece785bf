// Package defaultchecker embeds and lazily builds the judge core's
// built-in exact-match checker, used whenever a package declares none.
package defaultchecker

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"

	"simjudge/internal/compilecache"
	apperrors "simjudge/pkg/errors"
)

//go:embed checker.cpp
var source []byte

// buildTimestamp is injected at link time, e.g.
// -ldflags "-X simjudge/internal/checker/default.buildTimestamp=$(date -u +%Y%m%dT%H%M%S)".
// Left unset for a plain `go build`, cacheKey falls back to the main
// module's own build info.
var buildTimestamp string

// cacheKey is keyed off the toolchain's build timestamp rather than a
// hash of the embedded source, so a repo rebuild with a new compiler
// invalidates the cached default-checker binary even when checker.cpp
// itself is byte-for-byte unchanged.
func cacheKey() string {
	ts := buildTimestamp
	if ts == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			ts = info.Main.Version
		}
	}
	if ts == "" {
		ts = "dev"
	}
	return fmt.Sprintf("default-checker-%s", ts)
}

// Ensure returns the host path to a compiled default checker binary,
// compiling it on first use via cache and reusing it thereafter.
func Ensure(ctx context.Context, cache compilecache.Cache, buildDir string) (string, error) {
	return cache.GetOrInsert(ctx, cacheKey(), 0, func(ctx context.Context) (string, error) {
		return compile(ctx, buildDir)
	})
}

func compile(ctx context.Context, buildDir string) (string, error) {
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return "", apperrors.Wrap(err, apperrors.IOError)
	}
	srcPath := filepath.Join(buildDir, "default_checker.cpp")
	if err := os.WriteFile(srcPath, source, 0644); err != nil {
		return "", apperrors.Wrap(err, apperrors.IOError)
	}
	binPath := filepath.Join(buildDir, "default_checker")

	cmd := exec.CommandContext(ctx, "g++", "-O2", "-std=c++17", "-static", "-o", binPath, srcPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.CompilationError, "build default checker: %s", string(out))
	}
	return binPath, nil
}
