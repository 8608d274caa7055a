package download

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// jobStem matches the name prefix every orchestrated job gives its files.
var jobStem = regexp.MustCompile(`-(video|audio)-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.`)

type candidate struct {
	path    string
	ext     string
	modTime time.Time
}

func isPartial(name string) bool {
	if strings.Contains(name, ".part") {
		return true
	}
	for _, suffix := range []string{".ytdl", ".temp", ".tmp"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// locate finds the file a job produced. Files named after the job stem win;
// otherwise any complete file modified within window is accepted, as long as
// it is not named after a different job.
func locate(dir, stem, wantExt string, now time.Time, window time.Duration) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read download dir: %w", err)
	}

	var named, recent []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || isPartial(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		c := candidate{
			path:    filepath.Join(dir, name),
			ext:     filepath.Ext(name),
			modTime: info.ModTime(),
		}
		switch {
		case strings.HasPrefix(name, stem+"."):
			named = append(named, c)
		case jobStem.MatchString(name):
			// owned by another job
		case window > 0 && now.Sub(c.modTime) <= window:
			recent = append(recent, c)
		}
	}

	if best, ok := pick(named, wantExt); ok {
		return best, nil
	}
	if best, ok := pick(recent, wantExt); ok {
		return best, nil
	}
	return "", ErrNotFoundAfterRun
}

// pick prefers the expected extension, then the most recently modified file.
func pick(cands []candidate, wantExt string) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		iw, jw := cands[i].ext == wantExt, cands[j].ext == wantExt
		if iw != jw {
			return iw
		}
		return cands[i].modTime.After(cands[j].modTime)
	})
	return cands[0].path, true
}

// removeStem deletes every file carrying the job stem except keep.
func removeStem(dir, stem, keep string) {
	matches, err := filepath.Glob(filepath.Join(dir, globEscape(stem)+".*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if m != keep {
			os.Remove(m)
		}
	}
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}
