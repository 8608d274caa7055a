package dispatch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/user/tubefetch/internal/types"
)

// Outcome is the result of handling one inbound update. Every update maps to
// exactly one Outcome and, for callbacks, exactly one final message edit.
type Outcome int

const (
	OutcomePrompted Outcome = iota
	OutcomeCommand
	OutcomeInvalidURL
	OutcomeSessionNotFound
	OutcomeUnknownFormat
	OutcomeRateLimited
	OutcomeDownloadFailed
	OutcomeOversize
	OutcomeDeliveryFailed
	OutcomeDelivered
	OutcomeInternalError
	OutcomeIgnored
)

func (o Outcome) String() string {
	switch o {
	case OutcomePrompted:
		return "prompted"
	case OutcomeCommand:
		return "command"
	case OutcomeInvalidURL:
		return "invalid_url"
	case OutcomeSessionNotFound:
		return "session_not_found"
	case OutcomeUnknownFormat:
		return "unknown_format"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeDownloadFailed:
		return "download_failed"
	case OutcomeOversize:
		return "oversize"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeInternalError:
		return "internal_error"
	case OutcomeIgnored:
		return "ignored"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result carries an Outcome with the details its user message needs.
type Result struct {
	Outcome    Outcome
	Format     types.Format
	SourceID   types.SourceID
	Diagnostic string
	Size       int64
	Limit      int64
}

const maxDiagnosticChars = 200

const (
	welcomeText = "🎉 Welcome!\n\n" +
		"Send me any YouTube link and choose:\n" +
		"🎥 Download Video\n" +
		"🎧 Download MP3 Audio"
	promptText         = "Select download format:"
	invalidURLText     = "❌ Please send a valid YouTube link."
	unknownCommandText = "Unknown command. Available: /start, /help"
	storeFailedText    = "❌ Something went wrong, please send the link again."
)

var formatChoices = []types.Choice{
	{Label: "🎥 Download Video", Token: string(types.FormatVideo)},
	{Label: "🎧 Download MP3 Audio", Token: string(types.FormatAudio)},
}

func downloadingText(f types.Format) string {
	return fmt.Sprintf("📥 Downloading %s... Please wait ⏳", strings.ToUpper(string(f)))
}

// callbackText is the final edit for a callback Result.
func callbackText(r Result) string {
	switch r.Outcome {
	case OutcomeDelivered:
		return fmt.Sprintf("✅ Done! %s sent.", strings.ToUpper(string(r.Format)))
	case OutcomeSessionNotFound:
		return "❌ No pending URL. Please send the link again."
	case OutcomeUnknownFormat:
		return "❌ Unknown option. Press one of the buttons."
	case OutcomeRateLimited:
		return "⏳ Too many downloads, slow down. Press the button again in a minute."
	case OutcomeInvalidURL:
		return invalidURLText
	case OutcomeDownloadFailed:
		if r.Diagnostic == "" {
			return "❌ Download Failed."
		}
		return "❌ Download Failed:\n" + r.Diagnostic
	case OutcomeOversize:
		if r.Size <= 0 {
			return fmt.Sprintf("❌ File is too large to send (limit %s).", humanBytes(r.Limit))
		}
		return fmt.Sprintf("❌ File is too large to send (%s, limit %s).", humanBytes(r.Size), humanBytes(r.Limit))
	case OutcomeDeliveryFailed:
		return "❌ Upload Failed. Please try again later."
	case OutcomeInternalError, OutcomePrompted, OutcomeCommand, OutcomeIgnored:
		return "❌ Something went wrong. Please try again."
	}
	return "❌ Something went wrong. Please try again."
}

// shortDiagnostic picks the most telling line of program output and bounds
// it to maxDiagnosticChars runes.
func shortDiagnostic(diag string, fallback error) string {
	var pick string
	lines := strings.Split(strings.TrimSpace(diag), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if pick == "" {
			pick = line
		}
		if strings.Contains(line, "ERROR") {
			pick = line
			break
		}
	}
	if pick == "" && fallback != nil {
		pick = fallback.Error()
	}
	return truncateRunes(pick, maxDiagnosticChars)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

func humanBytes(n int64) string {
	const mib = 1 << 20
	if n >= mib {
		return fmt.Sprintf("%.1f MiB", float64(n)/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
