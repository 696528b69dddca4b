// Package textutil holds small text helpers for file names and labels:
// sanitizing unsafe characters, folding free text into slugs for lock and
// artifact names, and title-casing step names for display.
package textutil
