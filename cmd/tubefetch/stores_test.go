package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/tubefetch/internal/config"
	"github.com/user/tubefetch/internal/state"
)

func TestOpenSessionsBackends(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	s, closer, err := openSessions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	closer.Close()
	if _, ok := s.(*state.SessionStore); !ok {
		t.Errorf("memory backend returned %T", s)
	}

	cfg.Session.Backend = "sqlite"
	s, closer, err = openSessions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if _, ok := s.(*state.SQLiteSessionStore); !ok {
		t.Fatalf("sqlite backend returned %T", s)
	}
	ctx := context.Background()
	if err := s.Put(ctx, 1, "https://youtu.be/abc"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Errorf("expected 1 session, got %d", n)
	}
}

func TestDownloadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "/data"
	dc := downloadConfig(cfg)
	if dc.Dir != filepath.Join("/data", "downloads") {
		t.Errorf("unexpected dir %q", dc.Dir)
	}
	if dc.Timeout != 600*time.Second || dc.MaxBytes != 50<<20 || dc.Binary != "yt-dlp" {
		t.Errorf("unexpected config %+v", dc)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dst := filepath.Join(dir, "b.mp4")
	if err := writeTestFile(src, "payload"); err != nil {
		t.Fatal(err)
	}
	if err := copyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := readTestFile(dst)
	if err != nil || got != "payload" {
		t.Errorf("copy mismatch: %q %v", got, err)
	}
}

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func readTestFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}
