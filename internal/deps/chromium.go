package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// ChromiumCandidates are the executable names probed when no browser path is configured.
var ChromiumCandidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"headless-shell",
}

// CheckChromium reports the browser the capture tools will launch. An
// explicit execPath must resolve; otherwise the first candidate on PATH wins.
func CheckChromium(execPath string) Status {
	status := Status{
		Name:        "Chromium",
		Description: "Browser driven over DevTools for recordings and frame capture",
	}
	if explicit := strings.TrimSpace(execPath); explicit != "" {
		status.Command = explicit
		resolved, err := exec.LookPath(explicit)
		if err != nil {
			status.Detail = fmt.Sprintf("configured browser %q not found", explicit)
			return status
		}
		status.Path = resolved
		status.Available = true
		return status
	}
	for _, name := range ChromiumCandidates {
		if resolved, err := exec.LookPath(name); err == nil {
			status.Command = name
			status.Path = resolved
			status.Available = true
			return status
		}
	}
	status.Command = ChromiumCandidates[0]
	status.Detail = fmt.Sprintf("none of %s found", strings.Join(ChromiumCandidates, ", "))
	return status
}
