package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "config.json")
}

func writeTestConfig(t *testing.T, path string, cfg *Config) {
	t.Helper()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("TUBEFETCH_DATA_DIR", "")
}

func TestLoad_WritesDefaults(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not written: %v", err)
	}
	if cfg.MaxConcurrent != 1 {
		t.Errorf("expected sequential default, got %d", cfg.MaxConcurrent)
	}
	if cfg.Download.MaxBytes != 52428800 {
		t.Errorf("expected 50 MiB limit, got %d", cfg.Download.MaxBytes)
	}
	if cfg.Telegram.PollTimeoutSeconds != 30 || cfg.Telegram.BackoffSeconds != 5 {
		t.Errorf("unexpected poll defaults %+v", cfg.Telegram)
	}
	if cfg.Session.Backend != "memory" || cfg.SessionTTL() != 30*time.Minute {
		t.Errorf("unexpected session defaults %+v", cfg.Session)
	}
	if cfg.DownloadDir() != filepath.Join(cfg.DataDir, "downloads") {
		t.Errorf("unexpected download dir %s", cfg.DownloadDir())
	}
}

func TestSave_ReloadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)

	original := Default()
	original.DataDir = "/tmp/test-data"
	original.LogLevel = "debug"
	original.MaxConcurrent = 4
	original.Telegram.Token = "bot-token-456"
	original.Download.AudioCodec = "opus"
	original.Session.Backend = "sqlite"
	original.HTTP.Enabled = true

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("DataDir mismatch: %v != %v", loaded.DataDir, original.DataDir)
	}
	if loaded.LogLevel != original.LogLevel {
		t.Errorf("LogLevel mismatch: %v != %v", loaded.LogLevel, original.LogLevel)
	}
	if loaded.MaxConcurrent != original.MaxConcurrent {
		t.Errorf("MaxConcurrent mismatch: %v != %v", loaded.MaxConcurrent, original.MaxConcurrent)
	}
	if loaded.Telegram.Token != original.Telegram.Token {
		t.Errorf("Telegram.Token mismatch: %v != %v", loaded.Telegram.Token, original.Telegram.Token)
	}
	if loaded.Download.AudioCodec != "opus" || loaded.Session.Backend != "sqlite" || !loaded.HTTP.Enabled {
		t.Errorf("nested values not preserved: %+v", loaded)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	if err := os.WriteFile(path, []byte(`{"download": {"max_bytes": 1000}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Download.MaxBytes != 1000 {
		t.Errorf("expected override, got %d", cfg.Download.MaxBytes)
	}
	if cfg.Download.Binary != "yt-dlp" || cfg.Download.TimeoutSeconds != 600 {
		t.Errorf("expected defaults for absent keys, got %+v", cfg.Download)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	cfg := Default()
	cfg.Telegram.Token = "from-file"
	writeTestConfig(t, path, cfg)

	t.Setenv("BOT_TOKEN", "from-bot-token")
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Telegram.Token != "from-bot-token" {
		t.Errorf("expected BOT_TOKEN override, got %q", loaded.Telegram.Token)
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "from-telegram-env")
	t.Setenv("TUBEFETCH_DATA_DIR", "/srv/tubefetch")
	loaded, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Telegram.Token != "from-telegram-env" {
		t.Errorf("TELEGRAM_BOT_TOKEN should win, got %q", loaded.Telegram.Token)
	}
	if loaded.DataDir != "/srv/tubefetch" {
		t.Errorf("expected data dir override, got %q", loaded.DataDir)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"backend":     `{"session": {"backend": "redis"}}`,
		"concurrency": `{"max_concurrent": 0}`,
		"log level":   `{"log_level": "loud"}`,
		"bad json":    `{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := tempConfigPath(t)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %s", body)
			}
		})
	}
}

func TestSave_AtomicWrite(t *testing.T) {
	path := tempConfigPath(t)

	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tmpPath := path + ".tmp"
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Errorf("temp file should not exist after successful save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Errorf("saved file is not valid JSON: %v", err)
	}
}

func TestToMap(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/test", LogLevel: "debug"}
	cfg.Download.Binary = "yt-dlp"
	cfg.Download.VideoMaxHeight = 480

	m, err := ToMap(cfg)
	if err != nil {
		t.Fatalf("ToMap failed: %v", err)
	}
	if m["data_dir"] != "/tmp/test" {
		t.Errorf("expected data_dir=/tmp/test, got %v", m["data_dir"])
	}
	dl, ok := m["download"].(map[string]any)
	if !ok {
		t.Fatalf("expected download to be map, got %T", m["download"])
	}
	if dl["binary"] != "yt-dlp" {
		t.Errorf("expected download.binary=yt-dlp, got %v", dl["binary"])
	}
	// JSON numbers are float64
	if dl["video_max_height"] != float64(480) {
		t.Errorf("expected download.video_max_height=480, got %v", dl["video_max_height"])
	}
}

func TestListValues(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	cfg.Telegram.Token = "bot-token-abcd"

	plain, err := ListValues(cfg, false)
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if plain["telegram.token"] != "bot-token-abcd" {
		t.Errorf("expected unmasked telegram.token, got %v", plain["telegram.token"])
	}

	masked, err := ListValues(cfg, true)
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if masked["telegram.token"] != "***abcd" {
		t.Errorf("expected masked telegram.token=***abcd, got %v", masked["telegram.token"])
	}
	if masked["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", masked["log_level"])
	}
}

func TestGetValue(t *testing.T) {
	path := tempConfigPath(t)
	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.MaxConcurrent = 8
	writeTestConfig(t, path, cfg)

	v, err := GetValue(path, "log_level")
	if err != nil || v != "debug" {
		t.Errorf("expected log_level=debug, got %v (%v)", v, err)
	}
	v, err = GetValue(path, "download.audio_codec")
	if err != nil || v != "mp3" {
		t.Errorf("expected download.audio_codec=mp3, got %v (%v)", v, err)
	}
	v, err = GetValue(path, "max_concurrent")
	if err != nil || v != float64(8) {
		t.Errorf("expected max_concurrent=8, got %v (%T)", v, v)
	}

	_, err = GetValue(path, "nonexistent.key")
	if err == nil || err.Error() != "unknown config key: nonexistent.key" {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestSetValue(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, Default())

	if err := SetValue(path, "session.backend", "sqlite"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := SetValue(path, "download.max_bytes", "1048576"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := SetValue(path, "http.enabled", "true"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	clearEnv(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.Backend != "sqlite" || cfg.Download.MaxBytes != 1048576 || !cfg.HTTP.Enabled {
		t.Errorf("values not applied: %+v", cfg)
	}
	if cfg.Download.Binary != "yt-dlp" {
		t.Errorf("other values should be preserved, got binary=%q", cfg.Download.Binary)
	}
}

func TestSetValue_NonexistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", "config.json")
	if err := SetValue(path, "log_level", "debug"); err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestPaths(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	if cfg.ProfilesPath() != "/data/users.json" || cfg.CursorPath() != "/data/cursor.json" {
		t.Errorf("unexpected paths %s %s", cfg.ProfilesPath(), cfg.CursorPath())
	}
	cfg.LogFile = "bot.log"
	if cfg.LogFilePath() != "/data/bot.log" {
		t.Errorf("relative log file should live in data dir, got %s", cfg.LogFilePath())
	}
	cfg.LogFile = "/var/log/tubefetch.log"
	if !strings.HasPrefix(cfg.LogFilePath(), "/var/log") {
		t.Errorf("absolute log file should be kept, got %s", cfg.LogFilePath())
	}
}
