// Package judge is the top-level orchestrator that turns one submission
// plus one problem package into a final judge report: load the
// package, normalize it (calibrating time limits against the model
// solution if needed), compile the submission, run every test through
// the right protocol, and fold the results into a score via
// internal/scoring.
package judge

import (
	"time"

	"simjudge/internal/conver"
	"simjudge/internal/scoring"
)

// EvalRequest describes one submission to evaluate.
type EvalRequest struct {
	SubmissionID string
	// PackagePath is the host path to the problem package, either a
	// directory or a .zip archive.
	PackagePath string
	// SourcePath is the submitted source file.
	SourcePath string
	// LanguageID optionally forces a language suite; when empty the
	// suite is resolved from SourcePath's extension.
	LanguageID string
	// WorkRoot is where per-submission scratch directories are created.
	WorkRoot string
	// ExtraCompileFlags are appended to the language's compile command,
	// already filtered by the caller.
	ExtraCompileFlags []string

	// ConverOptions controls how the package is normalized; see
	// internal/conver.Options. Most callers leave this zero and accept
	// the package's own declared limits, scoring, and test set.
	ConverOptions conver.Options

	// OnPartialGroup, if set, receives a skip-and-resume partial group
	// report the moment a group's score collapses to zero, strictly
	// before that group's rejudge pass runs. See scoring.EvaluateGroup.
	OnPartialGroup func(scoring.GroupReport)

	// OnTestDone, if set, is invoked once for every test actually
	// executed, including the rejudge pass of an already-collapsed
	// group, after that test's group has finished evaluating, so a
	// caller can stream "N/M tests done" progress.
	OnTestDone func(doneTests, totalTests int)
}

// Verdict is the submission's overall classification, a convenience
// summary derived from the score and the worst test status; it sits
// alongside, not instead of, the per-group/per-test detail in Groups.
type Verdict string

const (
	VerdictAccepted            Verdict = "AC"
	VerdictPartial             Verdict = "PARTIAL"
	VerdictWrongAnswer         Verdict = "WA"
	VerdictTimeLimitExceeded   Verdict = "TLE"
	VerdictMemoryLimitExceeded Verdict = "MLE"
	VerdictOutputLimitExceeded Verdict = "OLE"
	VerdictRuntimeError        Verdict = "RTE"
	VerdictCompileError        Verdict = "CE"
	VerdictCheckerError        Verdict = "CHECKER_ERROR"
	VerdictJudgeError          Verdict = "JUDGE_ERROR"
)

// JudgeReport is one submission's final, fully-aggregated outcome:
// {groups, judge_log} per the data model, plus the ambient bookkeeping
// (verdict, totals, timestamps) every caller of a judging surface needs.
type JudgeReport struct {
	SubmissionID string
	Verdict      Verdict
	Score        int
	MaxScore     int

	CompileOK  bool
	CompileLog string

	Groups []scoring.GroupReport
	// JudgeLog is the human-readable rendering of Groups described in
	// §6: one block per group, one line per test, then a score line.
	JudgeLog string

	TotalTimeMs int64
	MaxMemoryKB int64

	ReceivedAt time.Time
	FinishedAt time.Time
}
