package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogsCommandPrintsTail(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.cfg.Paths.LogDir, "democap.log")
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	content := `{"msg":"first"}` + "\n" + `{"msg":"second"}` + "\n" + `{"msg":"third"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("expected only the last two lines, got:\n%s", out)
	}
	requireContains(t, out, `{"msg":"second"}`)
	requireContains(t, out, `{"msg":"third"}`)
}

func TestTestNotifyDisabled(t *testing.T) {
	t.Setenv("DEMOCAP_NTFY_TOPIC", "")
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}
