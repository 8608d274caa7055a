package artifact

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Janitor deletes files left behind in the download directory, for example
// by a crash between fetch and delivery.
type Janitor struct {
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

// NewJanitor creates a Janitor for dir. Files older than maxAge are removed.
func NewJanitor(dir string, maxAge time.Duration) *Janitor {
	return &Janitor{dir: dir, maxAge: maxAge, now: time.Now}
}

// Sweep removes stale regular files and returns how many it deleted.
// A missing directory is treated as empty.
func (j *Janitor) Sweep() (int, error) {
	if j.maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read download dir: %w", err)
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("janitor could not remove file", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("janitor removed stale files", "dir", j.dir, "count", removed)
	}
	return removed, nil
}
