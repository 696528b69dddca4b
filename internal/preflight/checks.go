package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"democap/internal/config"
	"democap/internal/deps"
)

// x11SocketDir holds the local X server sockets; overridden in tests.
var x11SocketDir = "/tmp/.X11-unix"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDisplay verifies that an X display is named and, for a local display,
// that its server socket is reachable.
func CheckDisplay(display string) Result {
	const name = "X display"

	display = strings.TrimSpace(display)
	if display == "" {
		return Result{Name: name, Detail: "DISPLAY not set"}
	}
	host, number, ok := parseDisplay(display)
	if !ok {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: malformed display name)", display)}
	}
	if host != "" && host != "unix" {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (remote, not probed)", display)}
	}
	socket := filepath.Join(x11SocketDir, "X"+strconv.Itoa(number))
	if err := unix.Access(socket, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s unavailable: %v)", display, socket, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (socket ok)", display)}
}

// parseDisplay splits "host:N.S" into host and display number.
func parseDisplay(display string) (string, int, bool) {
	idx := strings.LastIndex(display, ":")
	if idx < 0 {
		return "", 0, false
	}
	host := display[:idx]
	rest := display[idx+1:]
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		rest = rest[:dot]
	}
	if plus := strings.IndexByte(rest, '+'); plus >= 0 {
		rest = rest[:plus]
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return host, n, true
}

// CheckJourneyTarget verifies that the learning site answers at baseURL.
func CheckJourneyTarget(ctx context.Context, baseURL string) Result {
	const name = "Journey site"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", base)}
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (status %d)", base, resp.StatusCode)}
}

// CheckSystemDeps evaluates the external programs for the given config.
// The status command and capture preflight share this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Encoder.Binary,
			Description: "Required for screen capture and frame encoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Encoder.FFprobeBinary,
			Description: "Verifies recorded artifacts",
			Optional:    !cfg.Capture.VerifyWithFFprobe,
		},
		{
			Name:        "Graphviz",
			Command:     cfg.Graph.DotBinary,
			Description: "Renders knowledge graphs",
			Optional:    true,
		},
	}
	statuses := deps.CheckBinaries(requirements)
	return append(statuses, deps.CheckChromium(cfg.Browser.ExecPath))
}
