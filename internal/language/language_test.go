package language_test

import (
	"testing"

	"simjudge/internal/language"
	"simjudge/internal/sandbox/spec"
)

func TestRegistryResolveByExtension(t *testing.T) {
	r := language.NewDefaultRegistry()

	suite, err := r.Resolve("solution.cpp")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if suite.Spec.ID != "cpp" {
		t.Errorf("ID = %q, want cpp", suite.Spec.ID)
	}

	if _, err := r.Resolve("solution.exe"); err == nil {
		t.Fatal("expected error for unregistered extension")
	}
}

func TestRegistryByID(t *testing.T) {
	r := language.NewDefaultRegistry()
	suite, err := r.ByID("python3")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if suite.Spec.CompileEnabled {
		t.Errorf("python3 should not require compilation")
	}

	if _, err := r.ByID("cobol"); err == nil {
		t.Fatal("expected error for unknown language id")
	}
}

func TestBuildCompileCmd(t *testing.T) {
	r := language.NewDefaultRegistry()
	suite, err := r.ByID("cpp")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	cmd, err := suite.BuildCompileCmd("/work/main.cpp", "/work/main")
	if err != nil {
		t.Fatalf("BuildCompileCmd: %v", err)
	}
	want := []string{"g++", "-O2", "-std=c++17", "-static", "-o", "/work/main", "/work/main.cpp"}
	if len(cmd) != len(want) {
		t.Fatalf("cmd = %v, want %v", cmd, want)
	}
	for i := range want {
		if cmd[i] != want[i] {
			t.Errorf("cmd[%d] = %q, want %q", i, cmd[i], want[i])
		}
	}
}

func TestBuildCompileCmdDisabledForInterpreted(t *testing.T) {
	r := language.NewDefaultRegistry()
	suite, err := r.ByID("python3")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if _, err := suite.BuildCompileCmd("/work/main.py", "/work/main"); err == nil {
		t.Fatal("expected error building compile command for a non-compiled language")
	}
}

func TestBuildRunCmdInterpreted(t *testing.T) {
	r := language.NewDefaultRegistry()
	suite, err := r.ByID("python3")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	cmd, err := suite.BuildRunCmd("/work/main.py", "/work/main")
	if err != nil {
		t.Fatalf("BuildRunCmd: %v", err)
	}
	if len(cmd) != 2 || cmd[0] != "python3" || cmd[1] != "/work/main.py" {
		t.Errorf("cmd = %v, want [python3 /work/main.py]", cmd)
	}
}

func TestApplyMultipliers(t *testing.T) {
	r := language.NewDefaultRegistry()
	suite, err := r.ByID("python3")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	in := spec.ResourceLimit{CPUTimeMs: 1000, WallTimeMs: 2000, MemoryMB: 256}
	out := suite.ApplyMultipliers(in)
	if out.CPUTimeMs != 3000 {
		t.Errorf("CPUTimeMs = %d, want 3000", out.CPUTimeMs)
	}
	if out.WallTimeMs != 6000 {
		t.Errorf("WallTimeMs = %d, want 6000", out.WallTimeMs)
	}
	if out.MemoryMB != 512 {
		t.Errorf("MemoryMB = %d, want 512", out.MemoryMB)
	}
}
