package simfile_test

import (
	"strings"
	"testing"

	"simjudge/internal/simfile"
)

func TestParseScalarsAndLists(t *testing.T) {
	src := `
name: "Sample Problem"
label: samp
checker: check/check.cpp
memory_limit: 256
interactive: false
solutions: [sol.cpp, sol2.cpp]
limits: [
  1a 1.0 64,
  1b 1.0,
]
scoring: [1 40, 2 60]
`
	cfg, err := simfile.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Name != "Sample Problem" || cfg.Label != "samp" {
		t.Errorf("unexpected name/label: %+v", cfg)
	}
	if cfg.Checker != "check/check.cpp" {
		t.Errorf("Checker = %q", cfg.Checker)
	}
	if cfg.MemoryLimitMB != 256 {
		t.Errorf("MemoryLimitMB = %d, want 256", cfg.MemoryLimitMB)
	}
	if cfg.Interactive {
		t.Errorf("Interactive = true, want false")
	}
	if len(cfg.Solutions) != 2 {
		t.Fatalf("Solutions = %v", cfg.Solutions)
	}
	if len(cfg.Limits) != 2 || cfg.Limits[0].TestName != "1a" || cfg.Limits[0].MemoryLimitMB != 64 {
		t.Errorf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.Limits[1].MemoryLimitMB != 0 {
		t.Errorf("expected 1b to have no per-test memory override, got %+v", cfg.Limits[1])
	}
	if len(cfg.Scoring) != 2 || cfg.Scoring[0].GroupID != "1" || cfg.Scoring[0].Points != 40 {
		t.Errorf("unexpected scoring: %+v", cfg.Scoring)
	}
}

func TestSafePathStripsEscapes(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "etc/passwd",
		"/abs/path.cpp":    "abs/path.cpp",
		"plain.cpp":        "plain.cpp",
		"a/../b.cpp":       "b.cpp",
	}
	for in, want := range cases {
		if got := simfile.SafePath(in); got != want {
			t.Errorf("SafePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEffectiveGroupID(t *testing.T) {
	cases := map[string]string{
		"1a":   "1",
		"12b":  "12",
		"ocen": simfile.InitialGroupID,
		"abc":  "",
		"0x":   "0",
	}
	for name, want := range cases {
		if got := simfile.EffectiveGroupID(name); got != want {
			t.Errorf("EffectiveGroupID(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestBuildGroupsAutoScoring(t *testing.T) {
	tests := []simfile.Test{
		{Name: "1a", GroupID: "1"},
		{Name: "2a", GroupID: "2"},
		{Name: "3a", GroupID: "3"},
	}
	groups, err := simfile.BuildGroups(tests, []simfile.ScoringEntry{{GroupID: "1", Points: 40}})
	if err != nil {
		t.Fatalf("BuildGroups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3", len(groups))
	}
	if groups[0].Score != 40 {
		t.Errorf("group 1 score = %d, want 40 (explicit)", groups[0].Score)
	}
	total := 0
	for _, g := range groups {
		total += g.Score
	}
	if total != 100 {
		t.Errorf("total score = %d, want 100", total)
	}
	// groups 2 and 3 split the remaining 60 points evenly.
	if groups[1].Score != 30 || groups[2].Score != 30 {
		t.Errorf("auto-scored groups = %d,%d, want 30,30", groups[1].Score, groups[2].Score)
	}
}

func TestBuildGroupsZeroRatioForGroup0(t *testing.T) {
	tests := []simfile.Test{
		{Name: "ocen", GroupID: simfile.InitialGroupID},
		{Name: "1a", GroupID: "1"},
	}
	groups, err := simfile.BuildGroups(tests, []simfile.ScoringEntry{{GroupID: simfile.InitialGroupID, Points: 50}})
	if err != nil {
		t.Fatalf("BuildGroups: %v", err)
	}
	for _, g := range groups {
		if g.ID == simfile.InitialGroupID && g.Score != 0 {
			t.Errorf("group 0 score = %d, want 0 even with an explicit scoring entry", g.Score)
		}
	}
}

func TestBuildGroupsRemainderGoesToLastAutoGroup(t *testing.T) {
	tests := []simfile.Test{
		{Name: "1a", GroupID: "1"},
		{Name: "2a", GroupID: "2"},
		{Name: "3a", GroupID: "3"},
	}
	groups, err := simfile.BuildGroups(tests, nil)
	if err != nil {
		t.Fatalf("BuildGroups: %v", err)
	}
	total := 0
	for _, g := range groups {
		total += g.Score
	}
	if total != 100 {
		t.Errorf("total = %d, want 100", total)
	}
	if groups[2].Score != 34 {
		t.Errorf("last group should absorb the remainder: got %d, want 34", groups[2].Score)
	}
}
