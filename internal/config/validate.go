package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateJourney(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEncoder() error {
	if _, _, err := parseDimensions(c.Encoder.DisplaySize); err != nil {
		return fmt.Errorf("encoder.display_size: %w", err)
	}
	if !strings.HasPrefix(c.Encoder.Display, ":") && !strings.Contains(c.Encoder.Display, ":") {
		return fmt.Errorf("encoder.display: %q is not an X11 display name", c.Encoder.Display)
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.Margin < 0 {
		return errors.New("capture.margin must be zero or positive")
	}
	if c.Capture.GraceWindowMillis > 30_000 {
		return fmt.Errorf("capture.grace_window_ms must be at most 30000, got %d", c.Capture.GraceWindowMillis)
	}
	return nil
}

func (c *Config) validateFrames() error {
	if c.Frames.Width%2 != 0 || c.Frames.Height%2 != 0 {
		return fmt.Errorf("frames: width and height must be even for %s output, got %dx%d", c.Encoder.PixelFormat, c.Frames.Width, c.Frames.Height)
	}
	return nil
}

func (c *Config) validateJourney() error {
	base := c.Journey.BaseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("journey.base_url must be an http(s) URL, got %q", base)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) topic URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func parseDimensions(value string) (int, int, error) {
	parts := strings.SplitN(value, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", value)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", value)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", value)
	}
	return width, height, nil
}
