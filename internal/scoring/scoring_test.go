package scoring_test

import (
	"context"
	"testing"

	"simjudge/internal/runner"
	"simjudge/internal/scoring"
	"simjudge/internal/simfile"
)

func group(id string, score int, names ...string) simfile.TestGroup {
	g := simfile.TestGroup{ID: id, Score: score}
	for _, n := range names {
		g.Tests = append(g.Tests, simfile.Test{Name: n, GroupID: id, TimeLimitMs: 1000})
	}
	return g
}

func TestEvaluateGroupFullCredit(t *testing.T) {
	g := group("1", 50, "1a", "1b")
	runFn := scoring.RunnerFunc(func(ctx context.Context, test simfile.Test) (runner.TestResult, error) {
		return runner.TestResult{TestName: test.Name, Status: runner.StatusOK, ScoreFraction: 1, RuntimeMs: 10, TimeLimitMs: test.TimeLimitMs}, nil
	})

	report, err := scoring.EvaluateGroup(context.Background(), g, runFn, nil)
	if err != nil {
		t.Fatalf("EvaluateGroup: %v", err)
	}
	if report.Score != 50 {
		t.Errorf("Score = %v, want 50", report.Score)
	}
	if report.Ratio != 1.0 {
		t.Errorf("Ratio = %v, want 1.0", report.Ratio)
	}
}

func TestEvaluateGroupCollapsesToZeroOnWrongAnswer(t *testing.T) {
	g := group("1", 30, "1a", "1b", "1c")
	var ran []string
	runFn := scoring.RunnerFunc(func(ctx context.Context, test simfile.Test) (runner.TestResult, error) {
		ran = append(ran, test.Name)
		if test.Name == "1b" {
			return runner.TestResult{TestName: test.Name, Status: runner.StatusWA, RuntimeMs: 10, TimeLimitMs: test.TimeLimitMs}, nil
		}
		return runner.TestResult{TestName: test.Name, Status: runner.StatusOK, ScoreFraction: 1, RuntimeMs: 10, TimeLimitMs: test.TimeLimitMs}, nil
	})

	var partials []scoring.GroupReport
	report, err := scoring.EvaluateGroup(context.Background(), g, runFn, func(p scoring.GroupReport) {
		partials = append(partials, p)
	})
	if err != nil {
		t.Fatalf("EvaluateGroup: %v", err)
	}
	if report.Score != 0 {
		t.Errorf("Score = %v, want 0", report.Score)
	}
	if len(partials) != 1 {
		t.Fatalf("expected exactly one partial report, got %d", len(partials))
	}
	if partials[0].Tests[2].Result.Status != runner.StatusSkipped {
		t.Errorf("expected third test to be SKIPPED in the partial report, got %v", partials[0].Tests[2].Result.Status)
	}
	// The third test is rejudged for real in the final report even
	// though it cannot move the score.
	if report.Tests[2].Result.Status == runner.StatusSkipped {
		t.Errorf("expected the final report to carry the rejudged status, not SKIPPED")
	}
	if len(ran) != 3 {
		t.Errorf("expected every test to eventually run (skip is informational only), ran = %v", ran)
	}
}

func TestEvaluateGroupWithoutCallbackRunsEveryTest(t *testing.T) {
	g := group("1", 30, "1a", "1b", "1c")
	var ran []string
	runFn := scoring.RunnerFunc(func(ctx context.Context, test simfile.Test) (runner.TestResult, error) {
		ran = append(ran, test.Name)
		if test.Name == "1a" {
			return runner.TestResult{TestName: test.Name, Status: runner.StatusWA}, nil
		}
		return runner.TestResult{TestName: test.Name, Status: runner.StatusOK, ScoreFraction: 1, RuntimeMs: 10, TimeLimitMs: test.TimeLimitMs}, nil
	})

	report, err := scoring.EvaluateGroup(context.Background(), g, runFn, nil)
	if err != nil {
		t.Fatalf("EvaluateGroup: %v", err)
	}
	if len(ran) != 3 {
		t.Fatalf("expected all tests to run without a partial callback, ran = %v", ran)
	}
	if report.Score != 0 {
		t.Errorf("Score = %v, want 0", report.Score)
	}
}

func TestEvaluateGroupTimeExcessWithDefaultLambda(t *testing.T) {
	g := group("1", 100, "1a")
	runFn := scoring.RunnerFunc(func(ctx context.Context, test simfile.Test) (runner.TestResult, error) {
		return runner.TestResult{TestName: test.Name, Status: runner.StatusOK, ScoreFraction: 1, RuntimeMs: 1500, TimeLimitMs: 1000}, nil
	})
	report, err := scoring.EvaluateGroup(context.Background(), g, runFn, nil)
	if err != nil {
		t.Fatalf("EvaluateGroup: %v", err)
	}
	if report.Ratio != 0.0 {
		t.Errorf("Ratio = %v, want 0.0 (lambda=1.0 is a hard step at the time limit)", report.Ratio)
	}
}

func TestAggregateSumsPositiveMaxScoresOnly(t *testing.T) {
	groups := []simfile.TestGroup{
		{ID: "0", Score: 0},
		{ID: "1", Score: 40},
		{ID: "2", Score: 60},
	}
	reports := map[string]scoring.GroupReport{
		"0": {GroupID: "0", Score: 0},
		"1": {GroupID: "1", Score: 40},
		"2": {GroupID: "2", Score: 30},
	}
	score, maxScore := scoring.Aggregate(groups, reports)
	if score != 70 {
		t.Errorf("score = %d, want 70", score)
	}
	if maxScore != 100 {
		t.Errorf("maxScore = %d, want 100", maxScore)
	}
}

func TestTimeRatioScoreCutLaw(t *testing.T) {
	cases := []struct {
		runtimeMs, limitMs int64
		lambda             float64
		want               float64
	}{
		{500, 1000, 0.5, 1.0},
		{750, 1000, 0.5, 0.5},
		{1000, 1000, 0.5, 0.0},
		{1000, 1000, 1.0, 0.0},
		{999, 1000, 1.0, 1.0},
	}
	for _, c := range cases {
		got := scoring.TimeRatio(c.runtimeMs, c.limitMs, c.lambda)
		if got != c.want {
			t.Errorf("TimeRatio(%d, %d, %v) = %v, want %v", c.runtimeMs, c.limitMs, c.lambda, got, c.want)
		}
	}
}
