// Package notifications announces recording outcomes over ntfy.
//
// NewService returns a no-op Service when no topic is configured, so capture
// commands publish unconditionally. Events that are only useful in the log,
// such as a recording starting, are accepted and dropped.
package notifications
