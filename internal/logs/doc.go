// Package logs tails the democap JSON log file for `democap logs`.
//
// A negative offset returns the last N lines; a non-negative offset reads
// forward from that byte position, optionally waiting for new lines.
package logs
