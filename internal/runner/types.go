// Package runner implements the two test execution protocols: batch
// (program reads input, writes output, a checker compares it against
// the reference answer afterward) and interactive (program and
// interactor exchange data live over a pair of pipes while running).
package runner

import (
	"context"

	"simjudge/internal/checker"
	"simjudge/internal/sandbox/result"
)

// Status is one test's final classification, independent of whether it
// came from a runtime fault, a checker's WRONG verdict, or the skip
// half of a skip-and-resume pass.
type Status string

const (
	StatusOK           Status = "OK"
	StatusWA           Status = "WA"
	StatusTLE          Status = "TLE"
	StatusMLE          Status = "MLE"
	StatusOLE          Status = "OLE"
	StatusRTE          Status = "RTE"
	StatusCheckerError Status = "CHECKER_ERROR"
	StatusSkipped      Status = "SKIPPED"
)

// TestResult is one test case's execution outcome.
type TestResult struct {
	TestName      string
	Status        Status
	RuntimeMs     int64
	TimeLimitMs   int64
	MemoryUsedKB  int64
	MemoryLimitKB int64
	// ScoreFraction is the checker's reported score in [0, 1]; 0 for any
	// status other than OK/WA, since the checker was never consulted or
	// its verdict was WRONG.
	ScoreFraction float64
	Comment       string
	Run           result.RunResult
	// CheckerMemoryKB is the checker (or interactor) process's own peak
	// memory, populated only when Status is StatusCheckerError: a
	// program-side failure never needs it, and a passing checker run's
	// memory usage is not part of the verdict.
	CheckerMemoryKB int64
}

// CheckerInvoker runs a compiled checker binary against one test's
// input, reference answer, and the program's produced output.
type CheckerInvoker interface {
	Invoke(ctx context.Context, submissionID, testName, inputPath, answerPath, outputPath string) (checker.OutputReport, result.RunResult, error)
}

// classifyRuntime turns a raw sandbox RunResult into a resource-limit
// Status. Its second result is true when a limit was violated and false
// when the program exited cleanly within every limit and the result
// should be handed to the checker instead.
func classifyRuntime(run result.RunResult, timeLimitMs, memoryLimitMB, outputLimitMB int64) (Status, bool) {
	if run.OomKilled || (memoryLimitMB > 0 && run.MemoryKB > memoryLimitMB*1024) {
		return StatusMLE, true
	}
	if run.TimeMs > timeLimitMs || run.WallTimeMs > wallTimeLimitMs(timeLimitMs) {
		return StatusTLE, true
	}
	if outputLimitMB > 0 && run.OutputKB > outputLimitMB*1024 {
		return StatusOLE, true
	}
	if run.SiStatus != result.SiExited || run.ExitCode != 0 {
		return StatusRTE, true
	}
	return "", false
}

// wallTimeLimitMs derives the sandbox's wall-clock ceiling from a CPU
// time limit per §4.1: CPU time is authoritative, wall time is a safety
// net set to 1.5x it plus half a second.
func wallTimeLimitMs(cpuTimeLimitMs int64) int64 {
	return cpuTimeLimitMs + cpuTimeLimitMs/2 + 500
}
