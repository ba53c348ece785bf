// Package language describes how to compile and run a submission in a
// particular programming language: a command template, a resource
// multiplier pair, and the sandbox profile each phase runs under.
//
// A Suite is a small capability object with two operations (compile,
// run) per language; selecting the right one from a filename is a pure
// function (Registry.Resolve), grounded in the judge core's convention
// of routing purely on the submitted file's extension.
package language

import (
	"strings"

	"github.com/google/shlex"

	apperrors "simjudge/pkg/errors"

	"simjudge/internal/sandbox/spec"
)

// Spec describes one language's compile/run recipe.
type Spec struct {
	ID         string
	Extensions []string

	SourceFileName string
	BinaryFileName string

	CompileEnabled     bool
	CompileCmdTemplate string
	RunCmdTemplate     string

	// CompileProfile and RunProfile name the sandbox isolation profiles
	// (see internal/sandbox/security) each phase runs under.
	CompileProfile string
	RunProfile     string

	// TimeMultiplier and MemoryMultiplier scale a testcase's declared
	// limits before they are handed to the sandbox, so that languages
	// with heavier runtimes (interpreters, managed VMs) are not held to
	// a native-binary time limit.
	TimeMultiplier   float64
	MemoryMultiplier float64
}

// Suite is a language's compile/run recipe bound to concrete file paths.
type Suite struct {
	Spec Spec
}

// BuildCompileCmd expands the compile command template with {src} and
// {bin} substituted for the given paths.
func (s Suite) BuildCompileCmd(src, bin string) ([]string, error) {
	if !s.Spec.CompileEnabled {
		return nil, apperrors.Newf(apperrors.LanguageNotSupported, "language %q has no compile step", s.Spec.ID)
	}
	return buildCommand(s.Spec.CompileCmdTemplate, map[string]string{"src": src, "bin": bin})
}

// BuildRunCmd expands the run command template with {bin} and {src}
// substituted, since interpreted languages run the source directly.
func (s Suite) BuildRunCmd(src, bin string) ([]string, error) {
	return buildCommand(s.Spec.RunCmdTemplate, map[string]string{"src": src, "bin": bin})
}

// ApplyMultipliers scales limits by the language's time/memory
// multipliers, defaulting each to 1.0 when unset.
func (s Suite) ApplyMultipliers(limits spec.ResourceLimit) spec.ResourceLimit {
	out := limits
	out.CPUTimeMs = scale(limits.CPUTimeMs, s.Spec.TimeMultiplier)
	out.WallTimeMs = scale(limits.WallTimeMs, s.Spec.TimeMultiplier)
	out.MemoryMB = scale(limits.MemoryMB, s.Spec.MemoryMultiplier)
	return out
}

func scale(value int64, multiplier float64) int64 {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	return int64(float64(value) * multiplier)
}

// buildCommand substitutes {name} placeholders in template and splits
// the result shell-style, so a template like "g++ -O2 {src} -o {bin}"
// becomes ["g++", "-O2", "/work/a.cpp", "-o", "/work/a.out"].
func buildCommand(template string, vars map[string]string) ([]string, error) {
	replaced := template
	for k, v := range vars {
		replaced = strings.ReplaceAll(replaced, "{"+k+"}", v)
	}
	parts, err := shlex.Split(replaced)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ConfigInvalid, "parse command template %q", template)
	}
	if len(parts) == 0 {
		return nil, apperrors.Newf(apperrors.ConfigInvalid, "empty command template %q", template)
	}
	return parts, nil
}
