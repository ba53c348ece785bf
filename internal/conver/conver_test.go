package conver_test

import (
	"os"
	"path/filepath"
	"testing"

	"simjudge/internal/conver"
	"simjudge/internal/pkgloader/dir"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestNormalizeCompleteBatchPackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "simfile", `
name: batch-sample
checker: check/check.cpp
solutions: [sol.cpp]
memory_limit: 256
limits: [1a 1.0, 2a 2.0]
scoring: [1 40, 2 60]
`)
	writeFile(t, root, "check/check.cpp", "// checker")
	writeFile(t, root, "sol.cpp", "// model solution")
	writeFile(t, root, "tests/1a.in", "1\n")
	writeFile(t, root, "tests/1a.out", "1\n")
	writeFile(t, root, "tests/2a.in", "2\n")
	writeFile(t, root, "tests/2a.out", "2\n")
	writeFile(t, root, "doc/statement.md", "# Batch Sample")

	loader, err := dir.Open(root)
	if err != nil {
		t.Fatalf("dir.Open: %v", err)
	}
	defer loader.Close()

	res, err := conver.Normalize(loader, conver.Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Status != conver.StatusComplete {
		t.Fatalf("Status = %v, want COMPLETE", res.Status)
	}
	sf := res.Simfile
	if sf.Checker != "check/check.cpp" {
		t.Errorf("Checker = %q", sf.Checker)
	}
	if sf.Statement != "doc/statement.md" {
		t.Errorf("Statement = %q", sf.Statement)
	}
	if len(sf.Solutions) != 1 || sf.Solutions[0] != "sol.cpp" {
		t.Errorf("Solutions = %v", sf.Solutions)
	}
	if len(sf.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(sf.Groups))
	}
	total := 0
	for _, g := range sf.Groups {
		total += g.Score
		for _, tc := range g.Tests {
			if tc.MemoryLimitMB != 256 {
				t.Errorf("test %q memory limit = %d, want 256 (inherited global)", tc.Name, tc.MemoryLimitMB)
			}
			if tc.TimeLimitMs <= 0 {
				t.Errorf("test %q has no time limit", tc.Name)
			}
		}
	}
	if total != 100 {
		t.Errorf("total score = %d, want 100", total)
	}
}

func TestNormalizeUndeclaredTestsAreDroppedUnlessSought(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "simfile", `
checker: check/check.cpp
solutions: [sol.cpp]
memory_limit: 256
limits: [1a 1.0]
`)
	writeFile(t, root, "check/check.cpp", "// checker")
	writeFile(t, root, "sol.cpp", "// model solution")
	writeFile(t, root, "tests/1a.in", "1\n")
	writeFile(t, root, "tests/1a.out", "1\n")
	writeFile(t, root, "tests/2a.in", "2\n")
	writeFile(t, root, "tests/2a.out", "2\n")

	loader, err := dir.Open(root)
	if err != nil {
		t.Fatalf("dir.Open: %v", err)
	}
	defer loader.Close()

	res, err := conver.Normalize(loader, conver.Options{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	count := 0
	for _, g := range res.Simfile.Groups {
		count += len(g.Tests)
	}
	if count != 1 {
		t.Fatalf("expected only the declared test 1a, got %d tests", count)
	}

	res, err = conver.Normalize(loader, conver.Options{SeekForNewTests: true})
	if err != nil {
		t.Fatalf("Normalize with SeekForNewTests: %v", err)
	}
	count = 0
	for _, g := range res.Simfile.Groups {
		count += len(g.Tests)
	}
	if count != 2 {
		t.Fatalf("expected both tests with SeekForNewTests, got %d", count)
	}
}

func TestNormalizeNeedsModelSolutionProbeWhenNoLimitsDeclared(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "simfile", `
checker: check/check.cpp
solutions: [sol.cpp]
memory_limit: 256
`)
	writeFile(t, root, "check/check.cpp", "// checker")
	writeFile(t, root, "sol.cpp", "// model solution")
	writeFile(t, root, "tests/1a.in", "1\n")
	writeFile(t, root, "tests/1a.out", "1\n")

	loader, err := dir.Open(root)
	if err != nil {
		t.Fatalf("dir.Open: %v", err)
	}
	defer loader.Close()

	res, err := conver.Normalize(loader, conver.Options{MaxTimeLimitMs: 3000})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Status != conver.StatusNeedModelSolutionJudgeReport {
		t.Fatalf("Status = %v, want NEED_MODEL_SOLUTION_JUDGE_REPORT", res.Status)
	}
}

func TestNormalizeInteractiveWithoutCheckerFails(t *testing.T) {
	root := t.TempDir()
	trueVal := true
	writeFile(t, root, "simfile", `
solutions: [sol.cpp]
memory_limit: 256
limits: [1a 1.0]
`)
	writeFile(t, root, "sol.cpp", "// model solution")
	writeFile(t, root, "tests/1a.in", "1\n")

	loader, err := dir.Open(root)
	if err != nil {
		t.Fatalf("dir.Open: %v", err)
	}
	defer loader.Close()

	if _, err := conver.Normalize(loader, conver.Options{Interactive: &trueVal}); err == nil {
		t.Fatalf("expected error for interactive package with no checker")
	}
}

func TestResetTimeLimitsUsingJudgeReportsCalibrates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "simfile", `
checker: check/check.cpp
solutions: [sol.cpp]
memory_limit: 256
`)
	writeFile(t, root, "check/check.cpp", "// checker")
	writeFile(t, root, "sol.cpp", "// model solution")
	writeFile(t, root, "tests/1a.in", "1\n")
	writeFile(t, root, "tests/1a.out", "1\n")

	loader, err := dir.Open(root)
	if err != nil {
		t.Fatalf("dir.Open: %v", err)
	}
	defer loader.Close()

	res, err := conver.Normalize(loader, conver.Options{MaxTimeLimitMs: 3000})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	err = conver.ResetTimeLimitsUsingJudgeReports(res.Simfile, nil,
		[]conver.TestRuntime{{Name: "1a", Status: "OK", RuntimeMs: 123}},
		conver.RTLOptions{})
	if err != nil {
		t.Fatalf("ResetTimeLimitsUsingJudgeReports: %v", err)
	}
	got := res.Simfile.Groups[0].Tests[0].TimeLimitMs
	if got <= 0 || got%10 != 0 {
		t.Errorf("calibrated time limit = %d, want a positive multiple of 10", got)
	}
}

func TestResetTimeLimitsUsingJudgeReportsRejectsFailingModelSolution(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "simfile", `
checker: check/check.cpp
solutions: [sol.cpp]
memory_limit: 256
`)
	writeFile(t, root, "check/check.cpp", "// checker")
	writeFile(t, root, "sol.cpp", "// model solution")
	writeFile(t, root, "tests/1a.in", "1\n")
	writeFile(t, root, "tests/1a.out", "1\n")

	loader, err := dir.Open(root)
	if err != nil {
		t.Fatalf("dir.Open: %v", err)
	}
	defer loader.Close()

	res, err := conver.Normalize(loader, conver.Options{MaxTimeLimitMs: 3000})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	err = conver.ResetTimeLimitsUsingJudgeReports(res.Simfile, nil,
		[]conver.TestRuntime{{Name: "1a", Status: "RTE", RuntimeMs: 123}},
		conver.RTLOptions{})
	if err == nil {
		t.Fatalf("expected calibration to fail when model solution does not pass")
	}
}
