package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"democap/internal/deps"
)

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{
		"== Environment ==",
		"Recordings directory:",
		"X display:",
		"== Dependencies ==",
		"FFmpeg:",
		"[OK] Ready (command:",
		"== Recordings ==",
		"No recordings yet",
	} {
		requireContains(t, out, want)
	}
	if strings.Contains(out, "Journey site") {
		t.Fatalf("journey site should only be probed with --check-site:\n%s", out)
	}
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "binary not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] binary not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Chromium", statusOK, "", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
	if !strings.Contains(got, "[OK]") || strings.Contains(got, "[OK] ") {
		t.Fatalf("expected bare OK marker, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: false},
		{Name: "Chromium", Available: true, Path: "/usr/bin/chromium"},
		{Name: "Graphviz", Available: false, Optional: true, Detail: `binary "dot" not found`},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "Summary") || !strings.Contains(lines[0], "[ERROR] 1 required missing") {
		t.Fatalf("expected summary line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not available") {
		t.Fatalf("expected error detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready (command: /usr/bin/chromium)") {
		t.Fatalf("expected ready detail in third line, got %q", lines[2])
	}
	if !strings.Contains(lines[3], `[WARN] binary "dot" not found`) {
		t.Fatalf("expected warn detail in fourth line, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "Missing dependencies:") || !strings.Contains(lines[4], "FFmpeg, Graphviz") {
		t.Fatalf("expected missing dependencies summary, got %q", lines[4])
	}
}

func TestDependencySummaryOptionalOnly(t *testing.T) {
	line := dependencySummary([]deps.Status{{Name: "Graphviz", Optional: true}}, false)
	if !strings.Contains(line, "[WARN] 1 optional missing") {
		t.Fatalf("unexpected summary %q", line)
	}
	line = dependencySummary([]deps.Status{{Name: "FFmpeg", Available: true}}, false)
	if !strings.Contains(line, "[OK] All dependencies available") {
		t.Fatalf("unexpected summary %q", line)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTablePadsRows(t *testing.T) {
	out := renderTable([]string{"Status", "Count"}, [][]string{{"Completed"}}, []columnAlignment{alignLeft, alignRight})
	requireContains(t, out, "STATUS")
	requireContains(t, out, "Completed")
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty table without headers")
	}
}
