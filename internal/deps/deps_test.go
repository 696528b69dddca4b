package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeExecutable(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to resolve to %s, got %#v", present, results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestCheckChromiumPrefersConfiguredPath(t *testing.T) {
	path := writeExecutable(t, t.TempDir(), "my-chrome")
	status := CheckChromium(path)
	if !status.Available || status.Path != path {
		t.Fatalf("expected configured browser, got %#v", status)
	}
}

func TestCheckChromiumConfiguredPathMissing(t *testing.T) {
	status := CheckChromium(filepath.Join(t.TempDir(), "absent"))
	if status.Available || status.Detail == "" {
		t.Fatalf("expected unavailable browser with detail, got %#v", status)
	}
}

func TestCheckChromiumSearchesCandidates(t *testing.T) {
	binDir := t.TempDir()
	path := writeExecutable(t, binDir, "google-chrome")
	t.Setenv("PATH", binDir)

	status := CheckChromium("")
	if !status.Available || status.Command != "google-chrome" || status.Path != path {
		t.Fatalf("expected google-chrome from PATH, got %#v", status)
	}
}

func TestCheckChromiumNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	status := CheckChromium("")
	if status.Available {
		t.Fatal("expected browser lookup to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when no browser is available")
	}
}
