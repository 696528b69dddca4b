package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Stub encoder bodies. Each treats its last argument as the output path.
const (
	// RecordingEncoder writes the output and runs until SIGTERM.
	RecordingEncoder = `for a in "$@"; do out="$a"; done
echo frame-data > "$out"
echo "encoder ready" >&2
trap 'exit 0' TERM
while :; do sleep 0.05; done
`
	// StubbornEncoder writes the output and ignores SIGTERM.
	StubbornEncoder = `for a in "$@"; do out="$a"; done
echo frame-data > "$out"
trap '' TERM
while :; do sleep 0.05; done
`
	// SilentEncoder runs until SIGTERM without writing any output.
	SilentEncoder = `trap 'exit 0' TERM
while :; do sleep 0.05; done
`
	// FloodingEncoder writes the output, emits far more stderr than a pipe
	// buffers, then marks the flood done and runs until SIGTERM.
	FloodingEncoder = `for a in "$@"; do out="$a"; done
echo frame-data > "$out"
i=0
while [ $i -lt 20000 ]; do
  echo "frame=$i fps=30 q=23.0 size=1024kB time=00:00:01.00 bitrate=8000.0kbits/s speed=1x" >&2
  i=$((i+1))
done
trap 'exit 0' TERM
touch "$out.flooded"
while :; do sleep 0.05; done
`
	// FailingEncoder exits immediately with status 3.
	FailingEncoder = `echo "Cannot open display :99" >&2
exit 3
`
	// OneShotEncoder writes the output and exits 0.
	OneShotEncoder = `for a in "$@"; do out="$a"; done
echo encoded > "$out"
`
)

// WriteScript writes an executable shell script into dir and returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}
