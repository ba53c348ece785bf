//go:build !linux

package engine

import (
	"context"

	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/spec"

	apperrors "simjudge/pkg/errors"
)

type stubEngine struct{}

// NewEngine returns a stub engine on non-Linux platforms: the sandbox
// relies on Linux namespaces, cgroup v2, and seccomp, none of which have
// a portable equivalent worth faking.
func NewEngine(cfg Config, resolver ProfileResolver) (Engine, error) {
	return &stubEngine{}, nil
}

func (s *stubEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	return result.RunResult{}, apperrors.New(apperrors.SandboxSystemError).WithMessage("sandbox engine is only supported on linux")
}

func (s *stubEngine) AsyncRun(ctx context.Context, runSpec spec.RunSpec) (Handle, error) {
	return nil, apperrors.New(apperrors.SandboxSystemError).WithMessage("sandbox engine is only supported on linux")
}

func (s *stubEngine) KillSubmission(ctx context.Context, submissionID string) error {
	return apperrors.New(apperrors.SandboxSystemError).WithMessage("sandbox engine is only supported on linux")
}
