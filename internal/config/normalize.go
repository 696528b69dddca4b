package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoder()
	c.normalizeCapture()
	c.normalizeFrames()
	if err := c.normalizeBrowser(); err != nil {
		return err
	}
	c.normalizeJourney()
	c.normalizeGraph()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.RecordingsDir) == "" {
		c.Paths.RecordingsDir = defaultRecordingsDir
	}
	if c.Paths.RecordingsDir, err = expandPath(c.Paths.RecordingsDir); err != nil {
		return fmt.Errorf("paths.recordings_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.GraphOutputDir) == "" {
		c.Paths.GraphOutputDir = defaultGraphOutputDir
	}
	if c.Paths.GraphOutputDir, err = expandPath(c.Paths.GraphOutputDir); err != nil {
		return fmt.Errorf("paths.graph_output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoder() {
	c.Encoder.Binary = strings.TrimSpace(c.Encoder.Binary)
	if c.Encoder.Binary == "" {
		c.Encoder.Binary = defaultEncoderBinary
	}
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
	if c.Encoder.FFprobeBinary == "" {
		c.Encoder.FFprobeBinary = defaultFFprobeBinary
	}
	c.Encoder.Display = strings.TrimSpace(c.Encoder.Display)
	if c.Encoder.Display == "" {
		if value, ok := os.LookupEnv("DISPLAY"); ok && strings.TrimSpace(value) != "" {
			c.Encoder.Display = strings.TrimSpace(value)
		} else {
			c.Encoder.Display = defaultDisplay
		}
	}
	c.Encoder.DisplaySize = strings.ToLower(strings.TrimSpace(c.Encoder.DisplaySize))
	if c.Encoder.DisplaySize == "" {
		c.Encoder.DisplaySize = defaultDisplaySize
	}
	if c.Encoder.FrameRate <= 0 {
		c.Encoder.FrameRate = defaultFrameRate
	}
	c.Encoder.Codec = strings.TrimSpace(c.Encoder.Codec)
	if c.Encoder.Codec == "" {
		c.Encoder.Codec = defaultCodec
	}
	c.Encoder.PixelFormat = strings.TrimSpace(c.Encoder.PixelFormat)
	if c.Encoder.PixelFormat == "" {
		c.Encoder.PixelFormat = defaultPixelFormat
	}
	c.Encoder.Preset = strings.TrimSpace(c.Encoder.Preset)
	if c.Encoder.Preset == "" {
		c.Encoder.Preset = defaultPreset
	}
}

func (c *Config) normalizeCapture() {
	if c.Capture.GraceWindowMillis <= 0 {
		c.Capture.GraceWindowMillis = defaultGraceWindowMillis
	}
	if c.Capture.WarmUpMillis < 0 {
		c.Capture.WarmUpMillis = 0
	}
	if c.Capture.StopTimeoutSeconds <= 0 {
		c.Capture.StopTimeoutSeconds = defaultStopTimeoutSeconds
	}
}

func (c *Config) normalizeFrames() {
	if c.Frames.Count <= 0 {
		c.Frames.Count = defaultFrameCount
	}
	if c.Frames.FrameRate <= 0 {
		c.Frames.FrameRate = c.Encoder.FrameRate
	}
	if c.Frames.Width <= 0 {
		c.Frames.Width = defaultFrameWidth
	}
	if c.Frames.Height <= 0 {
		c.Frames.Height = defaultFrameHeight
	}
	c.Frames.Output = strings.TrimSpace(c.Frames.Output)
	if c.Frames.Output == "" {
		c.Frames.Output = defaultFrameOutput
	}
}

func (c *Config) normalizeBrowser() error {
	c.Browser.ExecPath = strings.TrimSpace(c.Browser.ExecPath)
	if c.Browser.ExecPath == "" {
		if value, ok := os.LookupEnv("CHROME_PATH"); ok {
			c.Browser.ExecPath = strings.TrimSpace(value)
		}
	}
	if c.Browser.ExecPath != "" {
		expanded, err := expandPath(c.Browser.ExecPath)
		if err != nil {
			return fmt.Errorf("browser.exec_path: %w", err)
		}
		c.Browser.ExecPath = expanded
	}
	if c.Browser.WindowWidth <= 0 {
		c.Browser.WindowWidth = defaultWindowWidth
	}
	if c.Browser.WindowHeight <= 0 {
		c.Browser.WindowHeight = defaultWindowHeight
	}
	if c.Browser.WaitTimeoutSeconds <= 0 {
		c.Browser.WaitTimeoutSeconds = defaultWaitTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeJourney() {
	c.Journey.BaseURL = strings.TrimRight(strings.TrimSpace(c.Journey.BaseURL), "/")
	if c.Journey.BaseURL == "" {
		c.Journey.BaseURL = defaultJourneyBaseURL
	}
	c.Journey.Username = strings.TrimSpace(c.Journey.Username)
	if c.Journey.Username == "" {
		c.Journey.Username = defaultJourneyUsername
	}
	if c.Journey.Password == "" {
		if value, ok := os.LookupEnv("DEMOCAP_JOURNEY_PASSWORD"); ok {
			c.Journey.Password = value
		} else {
			c.Journey.Password = defaultJourneyPassword
		}
	}
	if c.Journey.DelayScale < 0 {
		c.Journey.DelayScale = 0
	}
}

func (c *Config) normalizeGraph() {
	c.Graph.DotBinary = strings.TrimSpace(c.Graph.DotBinary)
	if c.Graph.DotBinary == "" {
		c.Graph.DotBinary = defaultDotBinary
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("DEMOCAP_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
