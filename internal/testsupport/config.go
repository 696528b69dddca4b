package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"democap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Pacing, warm-up and grace delays are shortened so capture tests stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RecordingsDir = filepath.Join(base, "recordings")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.GraphOutputDir = filepath.Join(base, "graph")
	cfgVal.Capture.GraceWindowMillis = 200
	cfgVal.Capture.WarmUpMillis = 0
	cfgVal.Capture.StopTimeoutSeconds = 2
	cfgVal.Journey.DelayScale = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends them to PATH. If names is empty, the external binaries
// democap requires are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "dot"}
		}
		for _, name := range names {
			writeStub(b.t, b.baseDir, name, "exit 0\n")
		}
	}
}

// WithEncoderStub installs body as the ffmpeg stub and points the config at it.
func WithEncoderStub(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.Binary = writeStub(b.t, b.baseDir, "ffmpeg", body)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RecordingsDir)
}

func writeStub(t testing.TB, base, name, body string) string {
	t.Helper()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return target
}
