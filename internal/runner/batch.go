package runner

import (
	"context"
	"path/filepath"

	"simjudge/internal/checker"
	"simjudge/internal/language"
	"simjudge/internal/sandbox/engine"
	"simjudge/internal/sandbox/profile"
	"simjudge/internal/sandbox/spec"
	"simjudge/internal/simfile"

	apperrors "simjudge/pkg/errors"
)

// Batch runs a compiled submission against one test case: redirect
// stdin from the input file, capture stdout, then hand input/answer/
// output to a checker once the run itself didn't already fail on
// resources.
type Batch struct {
	Engine  engine.Engine
	Checker CheckerInvoker
}

// BatchParams bundles the per-submission context TestOnTest needs that
// isn't already carried by the Test itself.
type BatchParams struct {
	SubmissionID  string
	WorkDir       string
	BinaryPath    string
	Suite         language.Suite
	OutputLimitMB int64
	StackMB       int64
	PIDs          int64
}

// TestOnTest runs the program on one test and classifies the result,
// invoking the checker only when the run itself exited cleanly within
// its resource limits.
func (b Batch) TestOnTest(ctx context.Context, p BatchParams, test simfile.Test) (TestResult, error) {
	cmd, err := p.Suite.BuildRunCmd(p.BinaryPath, p.BinaryPath)
	if err != nil {
		return TestResult{}, err
	}

	limits := spec.ResourceLimit{
		CPUTimeMs:  test.TimeLimitMs,
		WallTimeMs: wallTimeLimitMs(test.TimeLimitMs),
		MemoryMB:   test.MemoryLimitMB,
		StackMB:    p.StackMB,
		OutputMB:   p.OutputLimitMB,
		PIDs:       p.PIDs,
	}

	outputPath := filepath.Join(p.WorkDir, test.Name+".prog_out")
	runSpec := spec.RunSpec{
		SubmissionID: p.SubmissionID,
		TestID:       test.Name,
		WorkDir:      p.WorkDir,
		Cmd:          cmd,
		StdinPath:    test.InputPath,
		StdoutPath:   outputPath,
		Profile:      p.Suite.Spec.RunProfile,
		Limits:       p.Suite.ApplyMultipliers(limits),
		TaskType:     string(profile.TaskTypeRun),
	}

	run, err := b.Engine.Run(ctx, runSpec)
	if err != nil {
		return TestResult{}, apperrors.Wrap(err, apperrors.SandboxSystemError)
	}

	base := TestResult{
		TestName:      test.Name,
		RuntimeMs:     run.TimeMs,
		TimeLimitMs:   test.TimeLimitMs,
		MemoryUsedKB:  run.MemoryKB,
		MemoryLimitKB: test.MemoryLimitMB * 1024,
		Run:           run,
	}

	if status, failed := classifyRuntime(run, test.TimeLimitMs, test.MemoryLimitMB, p.OutputLimitMB); failed {
		base.Status = status
		return base, nil
	}

	report, checkerRun, err := b.Checker.Invoke(ctx, p.SubmissionID, test.Name, test.InputPath, test.OutputPath, outputPath)
	if err != nil {
		base.Status = StatusCheckerError
		base.Comment = err.Error()
		base.CheckerMemoryKB = checkerRun.MemoryKB
		return base, nil
	}

	base.Comment = report.Comment
	base.ScoreFraction = report.ScoreFraction()
	if report.Verdict == checker.VerdictWrong {
		base.Status = StatusWA
	} else {
		base.Status = StatusOK
	}
	return base, nil
}
