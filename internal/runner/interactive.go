package runner

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"simjudge/internal/checker"
	"simjudge/internal/language"
	"simjudge/internal/sandbox/engine"
	"simjudge/internal/sandbox/profile"
	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/spec"
	"simjudge/internal/simfile"

	apperrors "simjudge/pkg/errors"
)

// tieWindow bounds how close two finish timestamps have to be before
// they are treated as a genuine simultaneous close rather than one side
// finishing first.
const tieWindow = 2 * time.Millisecond

// Interactive runs a program against an interactor (the package's
// checker, invoked in interactive mode) over a pair of named pipes: the
// program's stdout feeds the interactor's stdin and vice versa. Both
// legs run concurrently inside their own sandboxed process; TestOnTest
// races them to completion and kills whichever side is still alive
// once the other exits.
type Interactive struct {
	Engine engine.Engine
}

// InteractiveParams bundles the per-submission context TestOnTest needs.
type InteractiveParams struct {
	SubmissionID  string
	WorkDir       string
	BinaryPath    string
	Suite         language.Suite
	InteractorBin string
	InteractorArg []string
	OutputLimitMB int64
	StackMB       int64
	PIDs          int64
	InteractorLim spec.ResourceLimit
}

// TestOnTest runs one interactive test case. The interactor receives
// only the test's input path, as a command-line argument; nothing is
// bind-mounted into either sandbox, and there is no expected-output
// file for interactive problems.
func (ia Interactive) TestOnTest(ctx context.Context, p InteractiveParams, test simfile.Test) (TestResult, error) {
	progToJudge := filepath.Join(p.WorkDir, test.Name+".p2j.fifo")
	judgeToProg := filepath.Join(p.WorkDir, test.Name+".j2p.fifo")
	for _, path := range []string{progToJudge, judgeToProg} {
		if err := syscall.Mkfifo(path, 0600); err != nil {
			return TestResult{}, apperrors.Wrap(err, apperrors.SandboxSetupFailed)
		}
	}

	progCmd, err := p.Suite.BuildRunCmd(p.BinaryPath, p.BinaryPath)
	if err != nil {
		return TestResult{}, err
	}

	progLimits := p.Suite.ApplyMultipliers(spec.ResourceLimit{
		CPUTimeMs:  test.TimeLimitMs,
		WallTimeMs: wallTimeLimitMs(test.TimeLimitMs),
		MemoryMB:   test.MemoryLimitMB,
		StackMB:    p.StackMB,
		OutputMB:   p.OutputLimitMB,
		PIDs:       p.PIDs,
	})

	progSpec := spec.RunSpec{
		SubmissionID: p.SubmissionID,
		TestID:       test.Name,
		WorkDir:      p.WorkDir,
		Cmd:          progCmd,
		StdinPath:    judgeToProg,
		StdoutPath:   progToJudge,
		Profile:      p.Suite.Spec.RunProfile,
		Limits:       progLimits,
		TaskType:     string(profile.TaskTypeRun),
	}

	// The interactor is the package's checker invoked with just the
	// test's input and its stdio wired to the program instead of the
	// three batch file paths.
	interactorCmd := append([]string{p.InteractorBin}, p.InteractorArg...)
	interactorCmd = append(interactorCmd, test.InputPath)
	interactorSpec := spec.RunSpec{
		SubmissionID: p.SubmissionID,
		TestID:       test.Name + "-interactor",
		WorkDir:      p.WorkDir,
		Cmd:          interactorCmd,
		StdinPath:    progToJudge,
		StdoutPath:   judgeToProg,
		Profile:      p.Suite.Spec.RunProfile,
		Limits:       p.InteractorLim,
		TaskType:     string(profile.TaskTypeInteractor),
	}

	// The interactor is started first so the contestant's program is
	// never left waiting on its end of the pipe.
	interactorHandle, err := ia.Engine.AsyncRun(ctx, interactorSpec)
	if err != nil {
		return TestResult{}, apperrors.Wrap(err, apperrors.SandboxSystemError)
	}
	progHandle, err := ia.Engine.AsyncRun(ctx, progSpec)
	if err != nil {
		interactorHandle.Kill()
		return TestResult{}, apperrors.Wrap(err, apperrors.SandboxSystemError)
	}

	var progRun, interactorRun result.RunResult
	var progErr, interactorErr error
	var progDone, interactorDone time.Time
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		progRun, progErr = progHandle.AwaitResult(ctx)
		progDone = time.Now()
		// Whichever side finishes first, the other's pipe end is now
		// stale; kill it rather than waiting out its full time limit.
		interactorHandle.Kill()
	}()
	go func() {
		defer wg.Done()
		interactorRun, interactorErr = interactorHandle.AwaitResult(ctx)
		interactorDone = time.Now()
		progHandle.Kill()
	}()
	wg.Wait()

	if progErr != nil {
		return TestResult{}, apperrors.Wrap(progErr, apperrors.SandboxSystemError)
	}
	if interactorErr != nil {
		return TestResult{}, apperrors.Wrap(interactorErr, apperrors.InteractorBroken)
	}

	base := TestResult{
		TestName:      test.Name,
		RuntimeMs:     progRun.TimeMs,
		TimeLimitMs:   test.TimeLimitMs,
		MemoryUsedKB:  progRun.MemoryKB,
		MemoryLimitKB: test.MemoryLimitMB * 1024,
		Run:           progRun,
	}

	interactorFailed := interactorRun.SiStatus != result.SiExited || interactorRun.ExitCode != 0

	// Deterministic tiebreak for a genuinely simultaneous close: program
	// side wins unless the interactor itself exited abnormally.
	gap := progDone.Sub(interactorDone)
	if gap < 0 {
		gap = -gap
	}
	progClosedFirst := progDone.Before(interactorDone)
	if gap <= tieWindow {
		progClosedFirst = !interactorFailed
	}

	if interactorFailed {
		base.Status = StatusCheckerError
		base.Comment = "interactor exited abnormally"
		base.CheckerMemoryKB = interactorRun.MemoryKB
		return base, nil
	}

	// The interactor's own verdict is the baseline report regardless of
	// which side closed its pipe first: a program closing first only
	// grants its own resource usage the power to override that verdict
	// (or an unreadable one), it never substitutes a bare OK for an
	// unread checker verdict.
	report, err := checker.ParseOutput(strings.NewReader(interactorRun.Stdout), defaultMaxCommentLen)

	if progClosedFirst {
		if status, failed := classifyRuntime(progRun, test.TimeLimitMs, test.MemoryLimitMB, p.OutputLimitMB); failed {
			base.Status = status
			return base, nil
		}
	}

	if err != nil {
		base.Status = StatusCheckerError
		base.Comment = err.Error()
		base.CheckerMemoryKB = interactorRun.MemoryKB
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
