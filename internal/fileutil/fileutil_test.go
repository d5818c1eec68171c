package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "nested", "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveFileRemovesSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a", "clip.webm")
	dst := filepath.Join(dir, "b", "clip.webm")

	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "video" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestCopyTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "figures")
	dst := filepath.Join(dir, "site", "figures")

	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "fig1.svg"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "fig2.svg"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyTree(src, dst); err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{"fig1.svg", filepath.Join("sub", "fig2.svg")} {
		if _, err := os.Stat(filepath.Join(dst, rel)); err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
	}
	// Source untouched.
	if _, err := os.Stat(filepath.Join(src, "fig1.svg")); err != nil {
		t.Fatalf("source modified: %v", err)
	}
}

func TestIsNewer(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "intro.mp4")
	artifact := filepath.Join(dir, "intro.webm")

	if err := os.WriteFile(source, []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}

	newer, err := IsNewer(artifact, source)
	if err != nil {
		t.Fatal(err)
	}
	if newer {
		t.Fatal("missing artifact reported newer")
	}

	if err := os.WriteFile(artifact, []byte("derived"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(artifact, future, future); err != nil {
		t.Fatal(err)
	}

	newer, err = IsNewer(artifact, source)
	if err != nil {
		t.Fatal(err)
	}
	if !newer {
		t.Fatal("artifact with later mtime not reported newer")
	}

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(artifact, past, past); err != nil {
		t.Fatal(err)
	}
	newer, err = IsNewer(artifact, source)
	if err != nil {
		t.Fatal(err)
	}
	if newer {
		t.Fatal("stale artifact reported newer")
	}
}

func TestPruneEmptyDirs(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "dark", "scene")
	kept := filepath.Join(root, "light")

	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(kept, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(kept, "keep.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed := PruneEmptyDirs(root)
	if len(removed) != 2 {
		t.Fatalf("removed %v, want the scene dir and its emptied parent", removed)
	}

	if _, err := os.Stat(filepath.Join(root, "dark")); !os.IsNotExist(err) {
		t.Fatal("emptied parent not pruned")
	}
	if _, err := os.Stat(kept); err != nil {
		t.Fatalf("non-empty dir pruned: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root should be kept: %v", err)
	}
}
