// Package config loads, normalizes, and validates democap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DISPLAY and CHROME_PATH. The Config type centralizes every knob the capture
// sessions, browser driver, and CLI need so recordings, scratch frames, and
// logs land in predictable locations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
