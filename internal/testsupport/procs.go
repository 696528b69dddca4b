package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// ZombieChildren lists pids of exited but unreaped children of the test
// process. It skips the test when /proc is unavailable.
func ZombieChildren(t testing.TB) []int {
	t.Helper()
	stats, err := filepath.Glob("/proc/[0-9]*/stat")
	if err != nil || len(stats) == 0 {
		t.Skip("/proc not available")
	}
	self := os.Getpid()
	var zombies []int
	for _, path := range stats {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		// pid (comm) state ppid ...; comm may itself contain spaces or parens.
		line := string(data)
		end := strings.LastIndexByte(line, ')')
		if end < 0 {
			continue
		}
		fields := strings.Fields(line[end+1:])
		if len(fields) < 2 || fields[0] != "Z" {
			continue
		}
		if ppid, err := strconv.Atoi(fields[1]); err != nil || ppid != self {
			continue
		}
		if pid, err := strconv.Atoi(strings.Fields(line)[0]); err == nil {
			zombies = append(zombies, pid)
		}
	}
	return zombies
}
