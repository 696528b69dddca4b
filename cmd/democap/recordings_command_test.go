package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"democap/internal/catalog"
	"democap/internal/testsupport"
)

func seedRecording(t *testing.T, store *catalog.Store, id, output string, started time.Time, outcome catalog.Outcome) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.Begin(ctx, catalog.Recording{ID: id, OutputPath: output, StartedAt: started}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Finish(ctx, id, outcome); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestRecordingsCommandListsCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenCatalog(t, env.cfg)
	started := time.Now().Add(-time.Minute)
	seedRecording(t, store, "aaaaaaaa-1111", "/videos/demo_one.mp4", started,
		catalog.Outcome{Status: catalog.StatusCompleted, SizeBytes: 2048})
	seedRecording(t, store, "bbbbbbbb-2222", "/videos/demo_two.mp4", started.Add(time.Second),
		catalog.Outcome{Status: catalog.StatusFailed, ErrorMessage: "encoder exited"})

	out, _, err := runCLI(t, []string{"recordings"}, env.configPath)
	if err != nil {
		t.Fatalf("recordings: %v", err)
	}
	requireContains(t, out, "aaaaaaaa")
	requireContains(t, out, "Completed")
	requireContains(t, out, "2.0 KiB")
	requireContains(t, out, "demo_one.mp4")
	requireContains(t, out, "demo_two.mp4 (encoder exited)")
	if strings.Contains(out, "aaaaaaaa-1111") {
		t.Fatalf("expected shortened ids, got:\n%s", out)
	}
	if strings.Index(out, "bbbbbbbb") > strings.Index(out, "aaaaaaaa") {
		t.Fatalf("expected newest recording first:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"recordings", "--status", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("recordings --status: %v", err)
	}
	if strings.Contains(out, "aaaaaaaa") || !strings.Contains(out, "bbbbbbbb") {
		t.Fatalf("expected only failed recording, got:\n%s", out)
	}
}

func TestRecordingsCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"recordings"}, env.configPath)
	if err != nil {
		t.Fatalf("recordings: %v", err)
	}
	requireContains(t, out, "No recordings found")
}

func TestRecordingsCommandRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"recordings", "--status", "paused"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), `unknown status "paused"`) {
		t.Fatalf("expected unknown status error, got %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:               "-",
		512:             "512 B",
		2048:            "2.0 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(0); got != "-" {
		t.Fatalf("expected dash for zero duration, got %q", got)
	}
	if got := formatDuration(8*time.Second + 240*time.Millisecond); got != "8.2s" {
		t.Fatalf("unexpected duration %q", got)
	}
}
