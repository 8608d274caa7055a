package telegram

import (
	"strings"
	"unicode/utf8"
)

const maxTelegramMessage = 4096

// splitMessage breaks text into parts of at most maxTelegramMessage bytes,
// preferring to cut at a newline and never cutting inside a rune.
func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > maxTelegramMessage {
		end := maxTelegramMessage
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		if nl := strings.LastIndexByte(text[:end], '\n'); nl > maxTelegramMessage/2 {
			end = nl + 1
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// truncate bounds text to maxTelegramMessage bytes on a rune boundary.
func truncate(text string) string {
	if len(text) <= maxTelegramMessage {
		return text
	}
	end := maxTelegramMessage
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end]
}
