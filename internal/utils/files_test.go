package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(p, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SafeWriteFile(p, []byte("new")); err != nil {
		t.Fatalf("safe write: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != "new" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := FileExists(dir)
	if err != nil || !ok {
		t.Fatalf("dir should exist: %v %v", ok, err)
	}
	ok, err = FileExists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("missing should not exist: %v %v", ok, err)
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"jawROI":       "jawROI",
		"Entire Shape": "Entire Shape",
		"a/b\\c":       "a_b_c",
		"..":           "_..",
		"":             "_",
	}
	for in, want := range cases {
		if got := SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandHome("~/.meshstats/runs")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, ".meshstats", "runs") {
		t.Fatalf("expanded = %q", got)
	}
	if got, _ := ExpandHome("/abs"); got != "/abs" {
		t.Fatalf("absolute path changed: %q", got)
	}
}
