package runner_test

import (
	"context"
	"testing"

	"simjudge/internal/checker"
	"simjudge/internal/language"
	"simjudge/internal/runner"
	"simjudge/internal/sandbox/engine"
	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/spec"
	"simjudge/internal/simfile"
)

// fakeEngine is a scripted stand-in for engine.Engine: Run/AsyncRun
// return canned results in call order, grounded on the teacher's
// fakeEngine test double (tests/runner_cpp_test.go) but extended with
// AsyncRun/Handle support for the interactive protocol.
type fakeEngine struct {
	runResults []result.RunResult
	runErrs    []error
	calls      int
}

func (f *fakeEngine) next() (result.RunResult, error) {
	idx := f.calls
	f.calls++
	var run result.RunResult
	if idx < len(f.runResults) {
		run = f.runResults[idx]
	} else {
		run = result.RunResult{SiStatus: result.SiExited}
	}
	var err error
	if idx < len(f.runErrs) {
		err = f.runErrs[idx]
	}
	return run, err
}

func (f *fakeEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	return f.next()
}

func (f *fakeEngine) AsyncRun(ctx context.Context, runSpec spec.RunSpec) (engine.Handle, error) {
	run, err := f.next()
	if err != nil {
		return nil, err
	}
	return fakeHandle{run: run}, nil
}

func (f *fakeEngine) KillSubmission(ctx context.Context, submissionID string) error { return nil }

type fakeHandle struct {
	run result.RunResult
	err error
}

func (h fakeHandle) AwaitResult(ctx context.Context) (result.RunResult, error) { return h.run, h.err }
func (h fakeHandle) Kill() error                                               { return nil }

type fakeChecker struct {
	report checker.OutputReport
	run    result.RunResult
	err    error
	called *bool
}

func (f fakeChecker) Invoke(ctx context.Context, submissionID, testName, inputPath, answerPath, outputPath string) (checker.OutputReport, result.RunResult, error) {
	if f.called != nil {
		*f.called = true
	}
	return f.report, f.run, f.err
}

func cppSuite() language.Suite {
	return language.Suite{Spec: language.Spec{ID: "cpp", RunCmdTemplate: "{bin}", RunProfile: "native", TimeMultiplier: 1, MemoryMultiplier: 1}}
}

func TestBatchTestOnTestAccepted(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{{SiStatus: result.SiExited, ExitCode: 0, TimeMs: 10, MemoryKB: 1024}}}
	b := runner.Batch{Engine: eng, Checker: fakeChecker{report: checker.OutputReport{Verdict: checker.VerdictOK}}}

	test := simfile.Test{Name: "1a", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1a.in", OutputPath: "1a.out"}
	res, err := b.TestOnTest(context.Background(), runner.BatchParams{WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite(), OutputLimitMB: 64, PIDs: 16}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusOK {
		t.Fatalf("Status = %v, want OK", res.Status)
	}
	if res.ScoreFraction != 1.0 {
		t.Errorf("ScoreFraction = %v, want 1.0", res.ScoreFraction)
	}
}

func TestBatchTestOnTestWrongAnswer(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{{SiStatus: result.SiExited, ExitCode: 0, TimeMs: 10}}}
	b := runner.Batch{Engine: eng, Checker: fakeChecker{report: checker.OutputReport{Verdict: checker.VerdictWrong, Comment: "token 3 differs"}}}

	test := simfile.Test{Name: "1a", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1a.in", OutputPath: "1a.out"}
	res, err := b.TestOnTest(context.Background(), runner.BatchParams{WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite()}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusWA {
		t.Fatalf("Status = %v, want WA", res.Status)
	}
	if res.Comment != "token 3 differs" {
		t.Errorf("Comment = %q", res.Comment)
	}
}

func TestBatchTestOnTestTimeLimitExceededSkipsChecker(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{{SiStatus: result.SiExited, ExitCode: 0, TimeMs: 5000}}}
	invoked := false
	b := runner.Batch{Engine: eng, Checker: fakeChecker{called: &invoked}}

	test := simfile.Test{Name: "1a", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1a.in", OutputPath: "1a.out"}
	res, err := b.TestOnTest(context.Background(), runner.BatchParams{WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite()}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusTLE {
		t.Fatalf("Status = %v, want TLE", res.Status)
	}
	if invoked {
		t.Errorf("checker should not be invoked once the run itself is over the time limit")
	}
}

func TestBatchTestOnTestMemoryLimitExceeded(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{{SiStatus: result.SiKilled, MemoryKB: 300 * 1024, OomKilled: true}}}
	b := runner.Batch{Engine: eng, Checker: fakeChecker{}}

	test := simfile.Test{Name: "1b", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1b.in", OutputPath: "1b.out"}
	res, err := b.TestOnTest(context.Background(), runner.BatchParams{WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite()}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusMLE {
		t.Fatalf("Status = %v, want MLE", res.Status)
	}
}

func TestBatchTestOnTestRuntimeError(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{{SiStatus: result.SiExited, ExitCode: 1, TimeMs: 5}}}
	b := runner.Batch{Engine: eng, Checker: fakeChecker{}}

	test := simfile.Test{Name: "1c", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1c.in", OutputPath: "1c.out"}
	res, err := b.TestOnTest(context.Background(), runner.BatchParams{WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite()}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusRTE {
		t.Fatalf("Status = %v, want RTE", res.Status)
	}
}

func TestBatchTestOnTestCheckerErrorCarriesMemory(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{{SiStatus: result.SiExited, ExitCode: 0, TimeMs: 5}}}
	b := runner.Batch{Engine: eng, Checker: fakeChecker{err: errChecker, run: result.RunResult{MemoryKB: 2048}}}

	test := simfile.Test{Name: "1d", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1d.in", OutputPath: "1d.out"}
	res, err := b.TestOnTest(context.Background(), runner.BatchParams{WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite()}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusCheckerError {
		t.Fatalf("Status = %v, want CHECKER_ERROR", res.Status)
	}
	if res.CheckerMemoryKB != 2048 {
		t.Errorf("CheckerMemoryKB = %d, want 2048", res.CheckerMemoryKB)
	}
}

var errChecker = &checkerCrash{}

type checkerCrash struct{}

func (e *checkerCrash) Error() string { return "checker crashed" }
