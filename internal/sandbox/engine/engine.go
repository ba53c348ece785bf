// Package engine executes RunSpecs inside an isolated sandbox: mount
// namespaces, cgroup v2 accounting, rlimits, and a seccomp filter applied
// by a small exec helper the engine forks and execs into.
package engine

import (
	"context"

	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/spec"
)

// Handle represents an in-flight sandboxed process. AwaitResult blocks
// until it exits, is killed, or ctx is cancelled; Kill is safe to call
// concurrently with AwaitResult and tears down the whole process group.
type Handle interface {
	AwaitResult(ctx context.Context) (result.RunResult, error)
	Kill() error
}

// Engine executes a RunSpec inside an isolated sandbox.
//
// Run is synchronous sugar over AsyncRun+AwaitResult for callers with no
// use for killing a task mid-flight (most compile steps). AsyncRun and
// AwaitResult split start from wait so a caller racing two concurrently
// running processes (an interactive checker piped against the program,
// or a wall-clock supervisor) can hold a live Handle and Kill it from
// another goroutine without tearing down the whole engine.
type Engine interface {
	Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error)
	AsyncRun(ctx context.Context, runSpec spec.RunSpec) (Handle, error)
	KillSubmission(ctx context.Context, submissionID string) error
}
