package preflight

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"democap/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func withSocketDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := x11SocketDir
	x11SocketDir = dir
	t.Cleanup(func() { x11SocketDir = orig })
	return dir
}

func TestCheckDisplay_LocalSocket(t *testing.T) {
	dir := withSocketDir(t)
	ln, err := net.Listen("unix", filepath.Join(dir, "X7"))
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	defer ln.Close()

	if result := CheckDisplay(":7.0"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckDisplay(":8"); result.Passed {
		t.Fatal("expected failure for display without a socket")
	}
}

func TestCheckDisplay_Unset(t *testing.T) {
	if result := CheckDisplay("  "); result.Passed || result.Detail != "DISPLAY not set" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckDisplay_RemoteIsNotProbed(t *testing.T) {
	withSocketDir(t)
	if result := CheckDisplay("buildhost:10.0"); !result.Passed {
		t.Fatalf("expected remote display to pass, got: %s", result.Detail)
	}
}

func TestParseDisplay(t *testing.T) {
	cases := []struct {
		in     string
		host   string
		number int
		ok     bool
	}{
		{":0.0", "", 0, true},
		{":99", "", 99, true},
		{"unix:1", "unix", 1, true},
		{"host:2.1", "host", 2, true},
		{":0.0+10,20", "", 0, true},
		{"nocolon", "", 0, false},
		{":x", "", 0, false},
	}
	for _, tc := range cases {
		host, number, ok := parseDisplay(tc.in)
		if host != tc.host || number != tc.number || ok != tc.ok {
			t.Fatalf("parseDisplay(%q) = %q, %d, %v", tc.in, host, number, ok)
		}
	}
}

func TestCheckJourneyTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckJourneyTarget(context.Background(), srv.URL+"/"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckJourneyTarget_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if result := CheckJourneyTarget(context.Background(), srv.URL); result.Passed {
		t.Fatal("expected failure for 500")
	}
}

func TestCheckJourneyTarget_MissingURL(t *testing.T) {
	if result := CheckJourneyTarget(context.Background(), ""); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Scope{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_DirectoriesOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, Scope{})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestRunAll_LiveCaptureChecksDisplay(t *testing.T) {
	withSocketDir(t)
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	cfg.Encoder.Display = ":42"

	failed := Failed(RunAll(context.Background(), cfg, Scope{LiveCapture: true}))
	if len(failed) != 1 || failed[0].Name != "X display" {
		t.Fatalf("expected only the display check to fail, got %+v", failed)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	cfg.Encoder.Binary = "ffmpeg"
	cfg.Encoder.FFprobeBinary = "ffprobe"
	cfg.Graph.DotBinary = "definitely-not-dot"
	cfg.Capture.VerifyWithFFprobe = true

	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}
	byName := map[string]bool{}
	for _, s := range statuses {
		byName[s.Name] = s.Available
	}
	if !byName["FFmpeg"] || !byName["FFprobe"] {
		t.Fatalf("expected stubbed binaries to resolve: %+v", statuses)
	}
	if byName["Graphviz"] {
		t.Fatal("expected missing dot binary")
	}
	if statuses[1].Optional {
		t.Fatal("ffprobe must be required when verification is enabled")
	}
}
