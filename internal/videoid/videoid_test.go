package videoid

import (
	"errors"
	"testing"

	"github.com/user/tubefetch/internal/types"
)

func TestNormalizeAcceptedForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want types.SourceID
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch no www", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch music", "https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RD", "dQw4w9WgXcQ"},
		{"watch tracking", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&feature=share&si=xyz&t=42", "dQw4w9WgXcQ"},
		{"watch param order", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch http", "http://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short", "https://youtu.be/abc123", "abc123"},
		{"short tracking", "https://youtu.be/abc123?t=5", "abc123"},
		{"short si", "https://youtu.be/abc123?si=AbCdEf", "abc123"},
		{"short trailing slash", "https://youtu.be/abc123/", "abc123"},
		{"embed", "https://www.youtube.com/embed/abc123", "abc123"},
		{"embed tracking", "https://www.youtube.com/embed/abc123?autoplay=1", "abc123"},
		{"embed nocookie", "https://www.youtube-nocookie.com/embed/abc123", "abc123"},
		{"surrounding space", "  https://youtu.be/abc123  ", "abc123"},
		{"upper host", "https://WWW.YOUTUBE.COM/watch?v=abc123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"https://vimeo.com/12345",
		"https://www.youtube.com/",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=",
		"https://www.youtube.com/watch?v=bad$id",
		"https://www.youtube.com/channel/UC123",
		"https://www.youtube.com/embed/",
		"https://www.youtube.com/embed/abc/def",
		"https://youtu.be/",
		"https://youtu.be/abc/def",
		"ftp://youtu.be/abc123",
		"https://notyoutube.com/watch?v=abc123",
		"https://youtube.com.evil.com/watch?v=abc123",
		"check this https://youtu.be/abc123",
		"https://youtu.be/abc123 and more",
	}
	for _, raw := range inputs {
		if id, err := Normalize(raw); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Normalize(%q) = %q, %v; want ErrInvalidURL", raw, id, err)
		}
	}
}

func TestNormalizeTrackingParamsAgree(t *testing.T) {
	variants := []string{
		"https://www.youtube.com/watch?v=abc123",
		"https://www.youtube.com/watch?v=abc123&utm_source=x",
		"https://youtu.be/abc123?t=5",
		"https://youtu.be/abc123?si=zzz&feature=shared",
		"https://www.youtube.com/embed/abc123?start=10",
	}
	for _, raw := range variants {
		id, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", raw, err)
		}
		if id != "abc123" {
			t.Errorf("Normalize(%q) = %q, want abc123", raw, id)
		}
	}
}

func TestCanonical(t *testing.T) {
	got, err := Canonical("https://youtu.be/abc123?t=5")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("unexpected canonical %q", got)
	}
	if _, err := Canonical("nope"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
}
