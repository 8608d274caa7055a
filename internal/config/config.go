package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	DataDir       string `json:"data_dir"`
	LogLevel      string `json:"log_level"`
	LogFile       string `json:"log_file"`
	MaxConcurrent int    `json:"max_concurrent"`
	Telegram      struct {
		Token              string `json:"token"`
		PollTimeoutSeconds int    `json:"poll_timeout_seconds"`
		PollLimit          int    `json:"poll_limit"`
		BackoffSeconds     int    `json:"backoff_seconds"`
	} `json:"telegram"`
	Download struct {
		Binary                 string `json:"binary"`
		Dir                    string `json:"dir"`
		MaxBytes               int64  `json:"max_bytes"`
		TimeoutSeconds         int    `json:"timeout_seconds"`
		VideoMaxHeight         int    `json:"video_max_height"`
		AudioCodec             string `json:"audio_codec"`
		AudioBitrate           string `json:"audio_bitrate"`
		DiscoveryWindowSeconds int    `json:"discovery_window_seconds"`
		StaleAfterMinutes      int    `json:"stale_after_minutes"`
	} `json:"download"`
	Session struct {
		Backend    string `json:"backend"`
		TTLMinutes int    `json:"ttl_minutes"`
	} `json:"session"`
	RateLimit struct {
		PerMinute int `json:"per_minute"`
		Burst     int `json:"burst"`
	} `json:"rate_limit"`
	HTTP struct {
		Enabled bool   `json:"enabled"`
		Listen  string `json:"listen"`
	} `json:"http"`
}

// DefaultPath returns ~/.tubefetch/config.json.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".tubefetch", "config.json")
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	cfg := &Config{
		DataDir:       filepath.Join(os.Getenv("HOME"), ".tubefetch"),
		LogLevel:      "info",
		MaxConcurrent: 1,
	}
	cfg.Telegram.PollTimeoutSeconds = 30
	cfg.Telegram.PollLimit = 100
	cfg.Telegram.BackoffSeconds = 5
	cfg.Download.Binary = "yt-dlp"
	cfg.Download.MaxBytes = 50 << 20
	cfg.Download.TimeoutSeconds = 600
	cfg.Download.VideoMaxHeight = 720
	cfg.Download.AudioCodec = "mp3"
	cfg.Download.AudioBitrate = "192K"
	cfg.Download.DiscoveryWindowSeconds = 120
	cfg.Download.StaleAfterMinutes = 60
	cfg.Session.Backend = "memory"
	cfg.Session.TTLMinutes = 30
	cfg.RateLimit.PerMinute = 6
	cfg.RateLimit.Burst = 3
	cfg.HTTP.Listen = "127.0.0.1:8080"
	return cfg
}

func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	} else if tgToken := os.Getenv("BOT_TOKEN"); tgToken != "" {
		cfg.Telegram.Token = tgToken
	}
	if dataDir := os.Getenv("TUBEFETCH_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the bot cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	switch c.Session.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid session.backend %q (want memory or sqlite)", c.Session.Backend)
	}
	if c.Download.MaxBytes <= 0 {
		return fmt.Errorf("download.max_bytes must be positive")
	}
	if c.Download.Binary == "" {
		return fmt.Errorf("download.binary is required")
	}
	return nil
}

// DownloadDir returns download.dir, or <data_dir>/downloads when unset.
func (c *Config) DownloadDir() string {
	if c.Download.Dir != "" {
		return c.Download.Dir
	}
	return filepath.Join(c.DataDir, "downloads")
}

func (c *Config) PIDPath() string      { return filepath.Join(c.DataDir, "tubefetch.pid") }
func (c *Config) ProfilesPath() string { return filepath.Join(c.DataDir, "users.json") }
func (c *Config) CursorPath() string   { return filepath.Join(c.DataDir, "cursor.json") }
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.DataDir, "sessions.db")
}

// LogFilePath resolves log_file relative to the data dir. Empty means none.
func (c *Config) LogFilePath() string {
	if c.LogFile == "" || filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, c.LogFile)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}

func (c *Config) DiscoveryWindow() time.Duration {
	return time.Duration(c.Download.DiscoveryWindowSeconds) * time.Second
}

func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Download.StaleAfterMinutes) * time.Minute
}

func (c *Config) PollBackoff() time.Duration {
	return time.Duration(c.Telegram.BackoffSeconds) * time.Second
}

// Save writes cfg to path atomically (temp file + rename).
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap converts cfg to its nested JSON map form.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListValues returns every config key flattened, optionally with secrets masked.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

func readRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return m, nil
}

// GetValue reads a single dot-separated key from the file at path.
func GetValue(path, key string) (any, error) {
	m, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	v, ok := Flatten(m)[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue sets a dot-separated key in the file at path. raw is parsed as
// JSON when it can be (numbers, booleans), and stored as a string otherwise.
func SetValue(path, key, raw string) error {
	m, err := readRaw(path)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		v = raw
	}
	flat := Flatten(m)
	flat[key] = v
	data, err := json.MarshalIndent(Unflatten(flat), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}
