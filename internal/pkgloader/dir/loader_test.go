package dir_test

import (
	"os"
	"path/filepath"
	"testing"

	"simjudge/internal/pkgloader/dir"
)

func TestOpenAndLoad(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "simfile"), []byte("tests: [1]"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "1.in"), []byte("5\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l, err := dir.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	content, err := l.LoadAsStr("1.in")
	if err != nil {
		t.Fatalf("LoadAsStr: %v", err)
	}
	if content != "5\n" {
		t.Errorf("content = %q, want %q", content, "5\n")
	}

	path, err := l.LoadAsFile("1.in")
	if err != nil {
		t.Fatalf("LoadAsFile: %v", err)
	}
	if path != filepath.Join(root, "1.in") {
		t.Errorf("path = %q, want %q", path, filepath.Join(root, "1.in"))
	}

	dest := filepath.Join(t.TempDir(), "nested", "copy.in")
	if err := l.LoadIntoDestFile("1.in", dest); err != nil {
		t.Fatalf("LoadIntoDestFile: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "5\n" {
		t.Errorf("copied content = %q, want %q", got, "5\n")
	}
}

func TestOpenMissingSimfile(t *testing.T) {
	root := t.TempDir()
	if _, err := dir.Open(root); err == nil {
		t.Fatal("expected error when root has no simfile")
	}
}

func TestLoadAsFileMissing(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "simfile"), []byte("tests: [1]"), 0644)

	l, err := dir.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if _, err := l.LoadAsFile("missing.in"); err == nil {
		t.Fatal("expected error loading a nonexistent file")
	}
}
