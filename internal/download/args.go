package download

import (
	"fmt"
	"strconv"

	"github.com/user/tubefetch/internal/types"
)

// buildArgs returns the fetch program arguments for one job. The URL comes
// last, after "--", so it can never be read as an option. --max-filesize
// only aborts early; the produced file is still measured afterwards.
func (o *Orchestrator) buildArgs(id types.SourceID, format types.Format, template string) []string {
	args := []string{
		"--no-playlist", "--no-progress", "--no-mtime",
		"--max-filesize", strconv.FormatInt(o.cfg.MaxBytes, 10),
		"-o", template,
	}

	switch format {
	case types.FormatAudio:
		args = append(args,
			"-f", "bestaudio/best",
			"--extract-audio",
			"--audio-format", o.cfg.AudioCodec,
			"--audio-quality", o.cfg.AudioBitrate,
		)
	default:
		args = append(args,
			"-f", videoSelector(o.cfg.VideoMaxHeight),
			"--merge-output-format", "mp4",
		)
	}

	return append(args, "--", id.URL())
}

func videoSelector(maxHeight int) string {
	if maxHeight <= 0 {
		return "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	}
	return fmt.Sprintf(
		"bestvideo[height<=%[1]d][ext=mp4]+bestaudio[ext=m4a]/best[height<=%[1]d][ext=mp4]/best[height<=%[1]d]/best",
		maxHeight,
	)
}
