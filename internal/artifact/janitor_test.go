package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJanitorSweepsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.mp4")
	fresh := filepath.Join(dir, "fresh.mp4")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	j := NewJanitor(dir, time.Hour)
	n, err := j.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 removal, got %d", n)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file should be kept")
	}
	if _, err := os.Stat(filepath.Join(dir, "sub")); err != nil {
		t.Error("directories should be kept")
	}
}

func TestJanitorMissingDir(t *testing.T) {
	j := NewJanitor(filepath.Join(t.TempDir(), "nope"), time.Hour)
	n, err := j.Sweep()
	if err != nil || n != 0 {
		t.Errorf("expected (0, nil), got (%d, %v)", n, err)
	}
}

func TestJanitorDisabled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	os.WriteFile(p, []byte("x"), 0o644)
	old := time.Now().Add(-48 * time.Hour)
	os.Chtimes(p, old, old)

	n, err := NewJanitor(dir, 0).Sweep()
	if err != nil || n != 0 {
		t.Errorf("expected disabled janitor to do nothing, got (%d, %v)", n, err)
	}
}
