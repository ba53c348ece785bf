package runner_test

import (
	"context"
	"testing"

	"simjudge/internal/runner"
	"simjudge/internal/sandbox/result"
	"simjudge/internal/sandbox/spec"
	"simjudge/internal/simfile"
)

func TestInteractiveTestOnTestAccepted(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{
		{SiStatus: result.SiExited, ExitCode: 0, Stdout: "OK\n"}, // interactor (started first)
		{SiStatus: result.SiExited, ExitCode: 0, TimeMs: 20, MemoryKB: 512}, // program
	}}
	ia := runner.Interactive{Engine: eng}

	test := simfile.Test{Name: "1a", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1a.in"}
	res, err := ia.TestOnTest(context.Background(), runner.InteractiveParams{
		WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite(),
		InteractorBin: "/work/interactor", InteractorLim: spec.ResourceLimit{CPUTimeMs: 1000},
	}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusOK {
		t.Fatalf("Status = %v, want OK", res.Status)
	}
}

func TestInteractiveTestOnTestInteractorExitsAbnormally(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{
		{SiStatus: result.SiKilled, ExitCode: 2, MemoryKB: 4096}, // interactor crashes
		{SiStatus: result.SiExited, ExitCode: 0, TimeMs: 20},     // program keeps running, gets killed
	}}
	ia := runner.Interactive{Engine: eng}

	test := simfile.Test{Name: "1b", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1b.in"}
	res, err := ia.TestOnTest(context.Background(), runner.InteractiveParams{
		WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite(),
		InteractorBin: "/work/interactor", InteractorLim: spec.ResourceLimit{CPUTimeMs: 1000},
	}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusCheckerError {
		t.Fatalf("Status = %v, want CHECKER_ERROR", res.Status)
	}
	if res.CheckerMemoryKB != 4096 {
		t.Errorf("CheckerMemoryKB = %d, want 4096", res.CheckerMemoryKB)
	}
}

func TestInteractiveTestOnTestProgramTimeLimitExceeded(t *testing.T) {
	eng := &fakeEngine{runResults: []result.RunResult{
		{SiStatus: result.SiExited, ExitCode: 0}, // interactor
		{SiStatus: result.SiExited, ExitCode: 0, TimeMs: 5000}, // program over its limit
	}}
	ia := runner.Interactive{Engine: eng}

	test := simfile.Test{Name: "1c", TimeLimitMs: 1000, MemoryLimitMB: 256, InputPath: "1c.in"}
	res, err := ia.TestOnTest(context.Background(), runner.InteractiveParams{
		WorkDir: t.TempDir(), BinaryPath: "/work/main", Suite: cppSuite(),
		InteractorBin: "/work/interactor", InteractorLim: spec.ResourceLimit{CPUTimeMs: 1000},
	}, test)
	if err != nil {
		t.Fatalf("TestOnTest: %v", err)
	}
	if res.Status != runner.StatusTLE {
		t.Fatalf("Status = %v, want TLE", res.Status)
	}
}
