package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	RecordingsDir  string `toml:"recordings_dir"`
	ScratchDir     string `toml:"scratch_dir"`
	LogDir         string `toml:"log_dir"`
	GraphOutputDir string `toml:"graph_output_dir"`
}

// Encoder contains the external encoder invocation settings.
type Encoder struct {
	Binary        string `toml:"binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Display       string `toml:"display"`
	DisplaySize   string `toml:"display_size"`
	FrameRate     int    `toml:"frame_rate"`
	Codec         string `toml:"codec"`
	PixelFormat   string `toml:"pixel_format"`
	Preset        string `toml:"preset"`
}

// Capture contains live capture session timing.
type Capture struct {
	Margin             int  `toml:"margin"`
	GraceWindowMillis  int  `toml:"grace_window_ms"`
	WarmUpMillis       int  `toml:"warmup_ms"`
	StopTimeoutSeconds int  `toml:"stop_timeout_seconds"`
	VerifyWithFFprobe  bool `toml:"verify_with_ffprobe"`
}

// Frames contains the frame-capture (screenshot sequence) settings.
type Frames struct {
	Count     int    `toml:"count"`
	FrameRate int    `toml:"frame_rate"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Output    string `toml:"output"`
}

// Browser contains Chromium launch settings.
type Browser struct {
	ExecPath           string `toml:"exec_path"`
	Headless           bool   `toml:"headless"`
	WindowX            int    `toml:"window_x"`
	WindowY            int    `toml:"window_y"`
	WindowWidth        int    `toml:"window_width"`
	WindowHeight       int    `toml:"window_height"`
	WaitTimeoutSeconds int    `toml:"wait_timeout_seconds"`
}

// Journey contains the scripted student walkthrough settings.
type Journey struct {
	BaseURL    string  `toml:"base_url"`
	Username   string  `toml:"username"`
	Password   string  `toml:"password"`
	DelayScale float64 `toml:"delay_scale"`
}

// Graph contains knowledge graph rendering settings.
type Graph struct {
	DotBinary string `toml:"dot_binary"`
}

// Notifications contains ntfy settings. An empty topic disables them.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for democap.
//
// Configuration sections by subsystem:
//   - Paths: recordings, scratch, log and graph output directories
//   - Encoder: ffmpeg binary and codec arguments
//   - Capture: live capture margin, grace window, warm-up and stop timeout
//   - Frames: screenshot-sequence capture defaults
//   - Browser: Chromium executable, window geometry and wait timeout
//   - Journey: student walkthrough target and credentials
//   - Graph: Graphviz binary
//   - Notifications: ntfy topic for finished recordings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Encoder       Encoder       `toml:"encoder"`
	Capture       Capture       `toml:"capture"`
	Frames        Frames        `toml:"frames"`
	Browser       Browser       `toml:"browser"`
	Journey       Journey       `toml:"journey"`
	Graph         Graph         `toml:"graph"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/democap/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("democap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories democap writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RecordingsDir, c.Paths.ScratchDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the SQLite recordings catalog location.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.LogDir, "recordings.db")
}

// LockDir returns the directory holding per-display capture locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.LogDir, "locks")
}

// GraceWindow returns the post-launch window in which an encoder exit counts as a launch failure.
func (c *Config) GraceWindow() time.Duration {
	return time.Duration(c.Capture.GraceWindowMillis) * time.Millisecond
}

// WarmUp returns the fixed delay granted to the encoder after a successful launch.
func (c *Config) WarmUp() time.Duration {
	return time.Duration(c.Capture.WarmUpMillis) * time.Millisecond
}

// StopTimeout returns how long stop waits for the encoder before killing it.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Capture.StopTimeoutSeconds) * time.Second
}

// NotifyTimeout bounds a single ntfy request.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// WaitTimeout returns the bound applied to browser readiness polling.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Browser.WaitTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
