// Package capture records browser demos to video.
//
// A Session owns at most one live x11grab encoder at a time. Start derives
// the capture rectangle from a GeometrySource (normally the browser window
// plus a small margin), takes a per-display file lock, launches the encoder
// and waits out the warm-up delay. Stop terminates the encoder's process
// group, releases the lock, and only then checks that the artifact exists and
// is non-empty. Record wraps the pair so the encoder is stopped on every exit
// path of the recorded work.
//
// CaptureFrames is the screenshot-sequence variant: frames are written to a
// private scratch directory, encoded once, and the directory is always
// removed afterwards.
package capture
