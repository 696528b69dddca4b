package config

const (
	defaultRecordingsDir      = "~/.local/share/democap/recordings"
	defaultScratchDir         = "~/.cache/democap/frames"
	defaultLogDir             = "~/.local/share/democap/logs"
	defaultGraphOutputDir     = "output"
	defaultEncoderBinary      = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultDisplay            = ":0.0"
	defaultDisplaySize        = "1920x1080"
	defaultFrameRate          = 30
	defaultCodec              = "libx264"
	defaultPixelFormat        = "yuv420p"
	defaultPreset             = "ultrafast"
	defaultMargin             = 2
	defaultGraceWindowMillis  = 1000
	defaultWarmUpMillis       = 2000
	defaultStopTimeoutSeconds = 10
	defaultFrameCount         = 180
	defaultFrameWidth         = 1024
	defaultFrameHeight        = 600
	defaultFrameOutput        = "brain_animation.mp4"
	defaultWindowWidth        = 1600
	defaultWindowHeight       = 1000
	defaultWaitTimeoutSeconds = 10
	defaultJourneyBaseURL     = "http://localhost:8000"
	defaultJourneyUsername    = "alice"
	defaultJourneyPassword    = "student123"
	defaultDotBinary          = "dot"
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RecordingsDir:  defaultRecordingsDir,
			ScratchDir:     defaultScratchDir,
			LogDir:         defaultLogDir,
			GraphOutputDir: defaultGraphOutputDir,
		},
		Encoder: Encoder{
			Binary:        defaultEncoderBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Display:       defaultDisplay,
			DisplaySize:   defaultDisplaySize,
			FrameRate:     defaultFrameRate,
			Codec:         defaultCodec,
			PixelFormat:   defaultPixelFormat,
			Preset:        defaultPreset,
		},
		Capture: Capture{
			Margin:             defaultMargin,
			GraceWindowMillis:  defaultGraceWindowMillis,
			WarmUpMillis:       defaultWarmUpMillis,
			StopTimeoutSeconds: defaultStopTimeoutSeconds,
		},
		Frames: Frames{
			Count:     defaultFrameCount,
			FrameRate: defaultFrameRate,
			Width:     defaultFrameWidth,
			Height:    defaultFrameHeight,
			Output:    defaultFrameOutput,
		},
		Browser: Browser{
			WindowWidth:        defaultWindowWidth,
			WindowHeight:       defaultWindowHeight,
			WaitTimeoutSeconds: defaultWaitTimeoutSeconds,
		},
		Journey: Journey{
			BaseURL:    defaultJourneyBaseURL,
			Username:   defaultJourneyUsername,
			Password:   defaultJourneyPassword,
			DelayScale: 1,
		},
		Graph: Graph{
			DotBinary: defaultDotBinary,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
