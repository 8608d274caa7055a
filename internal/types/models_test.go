// internal/types/models_test.go
package types

import (
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"video", FormatVideo, true},
		{"audio", FormatAudio, true},
		{" AUDIO ", FormatAudio, true},
		{"gif", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParseFormat(%q): unexpected error %v", tt.in, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseFormat(%q): expected error", tt.in)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatExt(t *testing.T) {
	if FormatVideo.Ext() != ".mp4" {
		t.Errorf("video ext = %s", FormatVideo.Ext())
	}
	if FormatAudio.Ext() != ".mp3" {
		t.Errorf("audio ext = %s", FormatAudio.Ext())
	}
}

func TestUpdateChatIDAndKind(t *testing.T) {
	msg := Update{ID: 1, Message: &TextMessage{ChatID: 10}}
	if msg.ChatID() != 10 || msg.Kind() != "message" {
		t.Errorf("unexpected message update: %d %s", msg.ChatID(), msg.Kind())
	}
	cb := Update{ID: 2, Callback: &CallbackAction{ChatID: 20}}
	if cb.ChatID() != 20 || cb.Kind() != "callback" {
		t.Errorf("unexpected callback update: %d %s", cb.ChatID(), cb.Kind())
	}
	empty := Update{ID: 3}
	if empty.ChatID() != 0 || empty.Kind() != "unknown" {
		t.Errorf("unexpected empty update: %d %s", empty.ChatID(), empty.Kind())
	}
}
