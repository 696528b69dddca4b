// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and decodes streams and container metadata. Verify is
// what capture sessions call after stop to confirm that a recording holds a
// playable video stream rather than just a non-empty file.
package ffprobe
