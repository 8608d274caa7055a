// Package download runs the external fetch program for one (source, format)
// pair and hands back the produced file.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/user/tubefetch/internal/types"
)

const (
	// DefaultMaxBytes is the largest artifact accepted when no limit is configured.
	DefaultMaxBytes int64 = 50 << 20

	maxDiagnosticBytes = 8 << 10
)

// Config controls how the fetch program is invoked and what it may produce.
type Config struct {
	Binary          string
	Dir             string
	MaxBytes        int64
	Timeout         time.Duration
	VideoMaxHeight  int
	AudioCodec      string
	AudioBitrate    string
	DiscoveryWindow time.Duration
}

// Orchestrator runs one fetch at a time per call; it keeps no state between
// calls and never retries.
type Orchestrator struct {
	cfg    Config
	runner Runner
	now    func() time.Time
	newID  func() types.RequestID
}

// New creates an Orchestrator. A nil runner runs the real program.
func New(cfg Config, runner Runner) *Orchestrator {
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.AudioCodec == "" {
		cfg.AudioCodec = "mp3"
	}
	if cfg.AudioBitrate == "" {
		cfg.AudioBitrate = "192K"
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Orchestrator{
		cfg:    cfg,
		runner: runner,
		now:    time.Now,
		newID:  types.NewRequestID,
	}
}

// Dir returns the directory artifacts are written to.
func (o *Orchestrator) Dir() string {
	return o.cfg.Dir
}

// MaxBytes returns the enforced artifact size limit.
func (o *Orchestrator) MaxBytes() int64 {
	return o.cfg.MaxBytes
}

func (o *Orchestrator) wantExt(format types.Format) string {
	if format == types.FormatAudio {
		return "." + o.cfg.AudioCodec
	}
	return format.Ext()
}

// Fetch downloads id in the given format. It returns the artifact, a
// *RunError wrapping ErrDownloadFailed (process failure, timeout or no file
// found), or an *OversizeError when the file was over the limit, either
// skipped by the program or deleted after the run.
func (o *Orchestrator) Fetch(ctx context.Context, id types.SourceID, format types.Format) (types.Artifact, error) {
	if format != types.FormatVideo && format != types.FormatAudio {
		return types.Artifact{}, fmt.Errorf("unsupported format %q", format)
	}
	if err := os.MkdirAll(o.cfg.Dir, 0o755); err != nil {
		return types.Artifact{}, fmt.Errorf("create download dir: %w", err)
	}

	stem := fmt.Sprintf("%s-%s-%s", id, format, o.newID())
	template := filepath.Join(o.cfg.Dir, stem+".%(ext)s")
	args := o.buildArgs(id, format, template)

	runCtx := ctx
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	diag := newTailBuffer(maxDiagnosticBytes)
	started := o.now()
	slog.Debug("fetch starting", "source_id", string(id), "format", string(format), "stem", stem)
	runErr := o.runner.Run(runCtx, o.cfg.Binary, args, diag)
	elapsed := o.now().Sub(started)

	switch {
	case ctx.Err() != nil:
		removeStem(o.cfg.Dir, stem, "")
		return types.Artifact{}, &RunError{Diagnostic: diag.String(), Err: fmt.Errorf("%w: %w", ErrDownloadFailed, ctx.Err())}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		removeStem(o.cfg.Dir, stem, "")
		return types.Artifact{}, &RunError{Diagnostic: diag.String(), Err: ErrTimeout}
	}

	path, err := locate(o.cfg.Dir, stem, o.wantExt(format), o.now(), o.cfg.DiscoveryWindow)
	if err != nil {
		removeStem(o.cfg.Dir, stem, "")
		if oversize, ok := skippedOversize(diag.String(), o.cfg.MaxBytes); ok {
			return types.Artifact{}, oversize
		}
		if runErr != nil {
			return types.Artifact{}, &RunError{Diagnostic: diag.String(), Err: fmt.Errorf("%w: %w", ErrDownloadFailed, runErr)}
		}
		return types.Artifact{}, &RunError{Diagnostic: diag.String(), Err: err}
	}
	removeStem(o.cfg.Dir, stem, path)
	if runErr != nil {
		slog.Warn("fetch program exited with error but produced a file",
			"source_id", string(id), "path", path, "error", runErr)
	}

	info, err := os.Stat(path)
	if err != nil {
		return types.Artifact{}, &RunError{Diagnostic: diag.String(), Err: fmt.Errorf("%w: %w", ErrDownloadFailed, err)}
	}
	if info.Size() > o.cfg.MaxBytes {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Error("failed to remove oversize artifact", "path", path, "error", err)
		}
		return types.Artifact{}, &OversizeError{Path: path, Size: info.Size(), Limit: o.cfg.MaxBytes}
	}

	slog.Info("fetch complete",
		"source_id", string(id),
		"format", string(format),
		"path", path,
		"size_bytes", info.Size(),
		"elapsed", elapsed,
	)
	return types.Artifact{Path: path, SizeBytes: info.Size(), Format: format}, nil
}
