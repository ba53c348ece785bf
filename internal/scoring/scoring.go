// Package scoring aggregates per-test runner results into group
// (subtask) and submission-level scores, including the linear
// time-excess score-cut law and the skip-and-resume policy that
// short-circuits a group once it can no longer earn credit.
package scoring

import (
	"context"
	"math"

	"simjudge/internal/runner"
	"simjudge/internal/simfile"
)

// scoreCutEpsilon is how close to zero a group's running ratio must get
// before it is treated as provably unwinnable.
const scoreCutEpsilon = 1e-9

// TestReport pairs a test's identity with its runner outcome.
type TestReport struct {
	Test   simfile.Test
	Result runner.TestResult
	Run    bool // false when skipped rather than executed
}

// GroupReport is one test group's aggregated outcome.
type GroupReport struct {
	GroupID string
	Tests   []TestReport
	// Ratio is the group's running score-ratio: the minimum, across
	// every test evaluated so far, of that test's checker score and its
	// time-excess ratio.
	Ratio    float64
	Score    int
	MaxScore int
}

// Runner executes a single test and returns its outcome.
type Runner interface {
	RunTest(ctx context.Context, test simfile.Test) (runner.TestResult, error)
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, test simfile.Test) (runner.TestResult, error)

// RunTest implements Runner.
func (f RunnerFunc) RunTest(ctx context.Context, test simfile.Test) (runner.TestResult, error) {
	return f(ctx, test)
}

// TimeRatio implements the score-cut law: a linear discount of a test's
// contribution as its runtime rises from lambda times its time limit up
// to the limit itself, giving 1.0 at or below lambda×limit and 0.0 at or
// beyond the limit. lambda is
// score_cut_lambda in [0, 1]; 1.0 (the default, meaning "no
// discounting") makes the ratio a hard step from 1.0 to 0.0 at the time
// limit instead of a ramp.
func TimeRatio(runtimeMs, timeLimitMs int64, lambda float64) float64 {
	if timeLimitMs <= 0 {
		return 0
	}
	x := float64(runtimeMs) / float64(timeLimitMs)
	if lambda >= 1.0 {
		if x < 1.0 {
			return 1.0
		}
		return 0.0
	}
	ratio := (x - 1.0) / (lambda - 1.0)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func normalizeLambda(lambda float64) float64 {
	if lambda <= 0 || lambda > 1.0 {
		return 1.0
	}
	return lambda
}

// testContribution is a single test's bound on the group's score ratio:
// 0 for anything but a checker-confirmed OK (WA and every runtime fault
// already contribute 0 via the checker-score factor of the min), and
// otherwise the smaller of the checker's own score and the time-excess
// ratio.
func testContribution(r runner.TestResult, lambda float64) float64 {
	if r.Status != runner.StatusOK {
		return 0
	}
	timeRatio := TimeRatio(r.RuntimeMs, r.TimeLimitMs, lambda)
	if r.ScoreFraction < timeRatio {
		return r.ScoreFraction
	}
	return timeRatio
}

func roundScore(maxScore int, ratio float64) int {
	return int(math.Round(float64(maxScore) * ratio))
}

// EvaluateGroup runs every test in a group in declaration order,
// maintaining a running score ratio as the minimum contribution seen so
// far. Once that ratio collapses to (near) zero and a partial-report
// callback is supplied, the remaining tests are reported SKIPPED in one
// partial GroupReport delivered to onPartial exactly once, and only
// then actually run in a second pass: their real outcomes land in the
// final report, but — since the ratio is already pinned at zero — they
// cannot change the group's score. Without onPartial every test simply
// runs in order; a collapsed ratio cannot be raised back up by a later
// test either way, so no score accuracy is lost by never skipping.
func EvaluateGroup(ctx context.Context, group simfile.TestGroup, run Runner, onPartial func(GroupReport)) (GroupReport, error) {
	lambda := normalizeLambda(1.0)
	return evaluateGroupWithLambda(ctx, group, run, onPartial, lambda)
}

// EvaluateGroupWithLambda is EvaluateGroup with an explicit
// score_cut_lambda instead of the no-discounting default.
func EvaluateGroupWithLambda(ctx context.Context, group simfile.TestGroup, run Runner, onPartial func(GroupReport), lambda float64) (GroupReport, error) {
	return evaluateGroupWithLambda(ctx, group, run, onPartial, normalizeLambda(lambda))
}

func evaluateGroupWithLambda(ctx context.Context, group simfile.TestGroup, run Runner, onPartial func(GroupReport), lambda float64) (GroupReport, error) {
	report := GroupReport{GroupID: group.ID, Ratio: 1.0, MaxScore: group.Score}

	collapseAt := -1
	for i, test := range group.Tests {
		result, err := run.RunTest(ctx, test)
		if err != nil {
			return GroupReport{}, err
		}
		report.Tests = append(report.Tests, TestReport{Test: test, Result: result, Run: true})

		contribution := testContribution(result, lambda)
		if contribution < report.Ratio {
			report.Ratio = contribution
		}
		if report.Ratio <= scoreCutEpsilon && onPartial != nil {
			collapseAt = i
			break
		}
	}

	if len(group.Tests) == 0 {
		report.Ratio = 0
	}

	if collapseAt >= 0 {
		remaining := group.Tests[collapseAt+1:]
		partial := GroupReport{GroupID: group.ID, Ratio: report.Ratio, MaxScore: group.Score, Tests: append([]TestReport{}, report.Tests...)}
		for _, test := range remaining {
			partial.Tests = append(partial.Tests, TestReport{
				Test:   test,
				Result: runner.TestResult{TestName: test.Name, Status: runner.StatusSkipped},
				Run:    false,
			})
		}
		partial.Score = roundScore(group.Score, partial.Ratio)
		onPartial(partial)

		for _, test := range remaining {
			result, err := run.RunTest(ctx, test)
			if err != nil {
				return GroupReport{}, err
			}
			report.Tests = append(report.Tests, TestReport{Test: test, Result: result, Run: true})
		}
	}

	report.Score = roundScore(group.Score, report.Ratio)
	return report, nil
}

// Aggregate sums every group's score and every positive group max-score
// across the whole report.
func Aggregate(groups []simfile.TestGroup, reports map[string]GroupReport) (score, maxScore int) {
	for _, g := range groups {
		if g.Score > 0 {
			maxScore += g.Score
		}
		if r, ok := reports[g.ID]; ok {
			score += r.Score
		}
	}
	return score, maxScore
}
