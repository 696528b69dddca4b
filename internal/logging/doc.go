// Package logging assembles structured slog loggers and formatting helpers used
// across democap.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so capture and journey code can tag
// log lines with recording IDs and step names. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
