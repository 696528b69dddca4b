// Package browser drives a Chromium instance over the DevTools protocol.
//
// A Session is an explicit handle: every page operation goes through it and
// there is no package-level driver. Selectors starting with "/" or "(" are
// treated as XPath, everything else as CSS. Waits are bounded by the
// session's wait timeout and also honour the caller's context.
//
// The session doubles as the geometry source for live capture
// (WindowBounds) and as the screenshotter for frame capture (Screenshot).
package browser
