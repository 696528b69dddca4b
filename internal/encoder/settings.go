package encoder

import (
	"strconv"

	"democap/internal/config"
	"democap/internal/region"
)

// Settings holds the encoder invocation parameters shared by live and frame capture.
type Settings struct {
	Binary      string
	Display     string
	FrameRate   int
	Codec       string
	PixelFormat string
	Preset      string
}

// DefaultSettings returns the H.264 settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Binary:      "ffmpeg",
		Display:     ":0.0",
		FrameRate:   30,
		Codec:       "libx264",
		PixelFormat: "yuv420p",
		Preset:      "ultrafast",
	}
}

// NewSettings maps the encoder config section, falling back to defaults for empty fields.
func NewSettings(cfg config.Encoder) Settings {
	s := DefaultSettings()
	if cfg.Binary != "" {
		s.Binary = cfg.Binary
	}
	if cfg.Display != "" {
		s.Display = cfg.Display
	}
	if cfg.FrameRate > 0 {
		s.FrameRate = cfg.FrameRate
	}
	if cfg.Codec != "" {
		s.Codec = cfg.Codec
	}
	if cfg.PixelFormat != "" {
		s.PixelFormat = cfg.PixelFormat
	}
	if cfg.Preset != "" {
		s.Preset = cfg.Preset
	}
	return s
}

// ScreenGrabArgs builds the x11grab invocation that records r until signalled.
func ScreenGrabArgs(s Settings, r region.Region, output string) []string {
	return []string{
		"-f", "x11grab",
		"-video_size", r.VideoSize(),
		"-framerate", strconv.Itoa(s.FrameRate),
		"-i", s.Display + "+" + r.Offset(),
		"-c:v", s.Codec,
		"-pix_fmt", s.PixelFormat,
		"-preset", s.Preset,
		"-y", output,
	}
}

// FrameSequenceArgs builds the one-shot encode of a numbered image sequence.
// An empty crop skips the filter.
func FrameSequenceArgs(s Settings, pattern, crop, output string) []string {
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(s.FrameRate),
		"-i", pattern,
	}
	if crop != "" {
		args = append(args, "-vf", crop)
	}
	return append(args,
		"-c:v", s.Codec,
		"-pix_fmt", s.PixelFormat,
		output,
	)
}
