package download

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrDownloadFailed covers every run that did not yield a usable file.
	ErrDownloadFailed = errors.New("download failed")
	// ErrNotFoundAfterRun means the fetch program finished but no output
	// file could be located, even with the widened search.
	ErrNotFoundAfterRun = fmt.Errorf("%w: no output file found", ErrDownloadFailed)
	// ErrTimeout means the fetch program was killed at the wall-clock limit.
	ErrTimeout = fmt.Errorf("%w: timed out", ErrDownloadFailed)
)

// RunError is a failed fetch together with the tail of the program output.
type RunError struct {
	Diagnostic string
	Err        error
}

func (e *RunError) Error() string { return e.Err.Error() }
func (e *RunError) Unwrap() error { return e.Err }

// OversizeError reports a produced file larger than the configured limit.
// The file has already been removed when this error is returned.
type OversizeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *OversizeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("download skipped: %d bytes, limit is %d", e.Size, e.Limit)
	}
	return fmt.Sprintf("artifact %s is %d bytes, limit is %d", e.Path, e.Size, e.Limit)
}

// skippedLarge matches the line the fetch program prints when --max-filesize
// makes it skip a download.
var skippedLarge = regexp.MustCompile(`larger than max-filesize \((\d+) bytes > (\d+) bytes\)`)

// skippedOversize reports whether output shows a download skipped for size,
// with the sizes it names. Size is 0 when the program did not print one.
func skippedOversize(output string, limit int64) (*OversizeError, bool) {
	if !strings.Contains(output, "larger than max-filesize") {
		return nil, false
	}
	e := &OversizeError{Limit: limit}
	if m := skippedLarge.FindStringSubmatch(output); m != nil {
		e.Size, _ = strconv.ParseInt(m[1], 10, 64)
	}
	return e, true
}
