package runner

import (
	"context"
	"strings"

	"simjudge/internal/checker"
	"simjudge/internal/sandbox/engine"
	"simjudge/internal/sandbox/profile"
	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/spec"

	apperrors "simjudge/pkg/errors"
)

const defaultMaxCommentLen = 4096

// BatchCheckerInvoker runs a checker binary as
// "<checker> <input> <answer> <program_output>" inside the sandbox and
// parses its stdout.
type BatchCheckerInvoker struct {
	Engine        engine.Engine
	BinaryPath    string
	Args          []string
	Profile       string
	WorkDir       string
	Limits        spec.ResourceLimit
	MaxCommentLen int
}

// Invoke implements CheckerInvoker.
func (c BatchCheckerInvoker) Invoke(ctx context.Context, submissionID, testName, inputPath, answerPath, outputPath string) (checker.OutputReport, result.RunResult, error) {
	cmd := append([]string{c.BinaryPath}, c.Args...)
	cmd = append(cmd, inputPath, answerPath, outputPath)

	runSpec := spec.RunSpec{
		SubmissionID: submissionID,
		TestID:       testName + "-checker",
		WorkDir:      c.WorkDir,
		Cmd:          cmd,
		Profile:      c.Profile,
		Limits:       c.Limits,
		TaskType:     string(profile.TaskTypeChecker),
	}

	runResult, err := c.Engine.Run(ctx, runSpec)
	if err != nil {
		return checker.OutputReport{}, runResult, apperrors.Wrap(err, apperrors.CheckerCrashed)
	}
	if runResult.ExitCode != 0 {
		return checker.OutputReport{}, runResult, apperrors.Newf(apperrors.CheckerCrashed, "checker exited %d: %s", runResult.ExitCode, runResult.Stderr)
	}

	maxLen := c.MaxCommentLen
	if maxLen <= 0 {
		maxLen = defaultMaxCommentLen
	}
	report, err := checker.ParseOutput(strings.NewReader(runResult.Stdout), maxLen)
	return report, runResult, err
}
