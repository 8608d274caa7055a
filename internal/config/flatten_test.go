package config

import (
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "top level keys",
			in:   map[string]any{"log_level": "info", "max_concurrent": 1.0},
			want: map[string]any{"log_level": "info", "max_concurrent": 1.0},
		},
		{
			name: "sections",
			in: map[string]any{
				"download": map[string]any{"binary": "yt-dlp", "max_bytes": 52428800.0},
				"session":  map[string]any{"backend": "sqlite", "ttl_minutes": 30.0},
			},
			want: map[string]any{
				"download.binary":     "yt-dlp",
				"download.max_bytes":  52428800.0,
				"session.backend":     "sqlite",
				"session.ttl_minutes": 30.0,
			},
		},
		{
			name: "empty section",
			in:   map[string]any{"rate_limit": map[string]any{}},
			want: map[string]any{},
		},
		{
			name: "mixed value types",
			in:   map[string]any{"http": map[string]any{"enabled": true, "listen": "127.0.0.1:8080"}},
			want: map[string]any{"http.enabled": true, "http.listen": "127.0.0.1:8080"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Flatten(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Flatten() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnflatten(t *testing.T) {
	got := Unflatten(map[string]any{
		"download.audio_codec":   "mp3",
		"download.audio_bitrate": "192K",
		"session.backend":        "memory",
		"log_level":              "debug",
	})
	want := map[string]any{
		"download":  map[string]any{"audio_codec": "mp3", "audio_bitrate": "192K"},
		"session":   map[string]any{"backend": "memory"},
		"log_level": "debug",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unflatten() = %v, want %v", got, want)
	}
}

func TestFlattenUnflattenDefaults(t *testing.T) {
	m, err := ToMap(Default())
	if err != nil {
		t.Fatal(err)
	}
	if got := Unflatten(Flatten(m)); !reflect.DeepEqual(Flatten(got), Flatten(m)) {
		t.Errorf("round trip of the default config changed keys")
	}
	if _, ok := Flatten(m)["download.stale_after_minutes"]; !ok {
		t.Error("expected download.stale_after_minutes among the flattened keys")
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]any{"session.backend": 1, "download.binary": 1, "data_dir": 1})
	want := []string{"data_dir", "download.binary", "session.backend"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedKeys() = %v, want %v", got, want)
	}
}

func TestMaskSecrets(t *testing.T) {
	got := MaskSecrets(map[string]any{
		"download.binary": "yt-dlp",
		"telegram.token":  "123456:ABCdefGHIjkl",
		"session.backend": "sqlite",
	})
	if got["download.binary"] != "yt-dlp" || got["session.backend"] != "sqlite" {
		t.Errorf("non-secret keys must pass through, got %v", got)
	}
	if got["telegram.token"] != "***Ijkl" {
		t.Errorf("expected telegram.token=***Ijkl, got %v", got["telegram.token"])
	}
	if got := MaskSecrets(map[string]any{"telegram.token": nil}); got["telegram.token"] != nil {
		t.Errorf("expected nil token to pass through, got %v", got["telegram.token"])
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"ab", "***ab"},
		{"abcd", "***abcd"},
		{"abcdefgh", "***efgh"},
	}
	for _, tt := range tests {
		if got := MaskToken(tt.in); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
