package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"democap/internal/textutil"
)

func lockDisplay(dir, display string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(dir, "display-"+textutil.Slug(display, "default")+".lock")
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire display lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (lock %s)", ErrDisplayBusy, display, path)
	}
	return lock, nil
}
