package checker_test

import (
	"strings"
	"testing"

	"simjudge/internal/checker"
)

func TestParseOutputOK(t *testing.T) {
	report, err := checker.ParseOutput(strings.NewReader("OK\n\nexact match\n"), 1024)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if report.Verdict != checker.VerdictOK {
		t.Errorf("Verdict = %v, want OK", report.Verdict)
	}
	if report.ScoreFraction() != 1.0 {
		t.Errorf("ScoreFraction = %v, want 1.0", report.ScoreFraction())
	}
	if report.Comment != "exact match" {
		t.Errorf("Comment = %q, want %q", report.Comment, "exact match")
	}
}

func TestParseOutputWrong(t *testing.T) {
	report, err := checker.ParseOutput(strings.NewReader("WRONG\ntoken 3 differs\n"), 1024)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if report.Verdict != checker.VerdictWrong {
		t.Errorf("Verdict = %v, want WRONG", report.Verdict)
	}
	if report.ScoreFraction() != 0.0 {
		t.Errorf("ScoreFraction = %v, want 0.0", report.ScoreFraction())
	}
}

func TestParseOutputPartialCredit(t *testing.T) {
	report, err := checker.ParseOutput(strings.NewReader("OK\n42.5\npartial match\n"), 1024)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if !report.HasPercentage {
		t.Fatal("expected HasPercentage = true")
	}
	if got := report.ScoreFraction(); got != 0.425 {
		t.Errorf("ScoreFraction = %v, want 0.425", got)
	}
	if report.Comment != "partial match" {
		t.Errorf("Comment = %q, want %q", report.Comment, "partial match")
	}
}

func TestParseOutputRejectsUnknownVerdict(t *testing.T) {
	if _, err := checker.ParseOutput(strings.NewReader("MAYBE\n"), 1024); err == nil {
		t.Fatal("expected error for unrecognized verdict line")
	}
}

func TestParseOutputRejectsEmpty(t *testing.T) {
	if _, err := checker.ParseOutput(strings.NewReader(""), 1024); err == nil {
		t.Fatal("expected error for empty checker output")
	}
}

func TestParseOutputTruncatesComment(t *testing.T) {
	report, err := checker.ParseOutput(strings.NewReader("OK\n\n"+strings.Repeat("x", 100)), 10)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if len(report.Comment) != 10 {
		t.Errorf("len(Comment) = %d, want 10", len(report.Comment))
	}
}

func TestParseOutputOKWithUnparseableSecondLineIsCheckerError(t *testing.T) {
	if _, err := checker.ParseOutput(strings.NewReader("OK\nnot a percentage\n"), 1024); err == nil {
		t.Fatal("expected error for OK verdict with an unparseable second line")
	}
}

func TestParseOutputWrongIgnoresSecondLineEvenIfNumeric(t *testing.T) {
	report, err := checker.ParseOutput(strings.NewReader("WRONG\n42.5\nsome comment\n"), 1024)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if report.HasPercentage {
		t.Fatal("WRONG verdict must never report a percentage, even if line 2 looks numeric")
	}
	if report.ScoreFraction() != 0.0 {
		t.Errorf("ScoreFraction = %v, want 0.0", report.ScoreFraction())
	}
	if !strings.Contains(report.Comment, "42.5") {
		t.Errorf("Comment = %q, want it to retain the numeric-looking line as plain text", report.Comment)
	}
}

func TestParseOutputOKWithNoSecondLineDefaultsToFullCredit(t *testing.T) {
	report, err := checker.ParseOutput(strings.NewReader("OK\n"), 1024)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if report.HasPercentage {
		t.Fatal("expected HasPercentage = false when there is no second line")
	}
	if report.ScoreFraction() != 1.0 {
		t.Errorf("ScoreFraction = %v, want 1.0", report.ScoreFraction())
	}
}
