package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPollTimeout is returned when a polled condition never became true.
var ErrPollTimeout = errors.New("condition not met before timeout")

// Poll evaluates ready every interval until it reports true, returns an
// error, or timeout elapses. The first evaluation happens immediately.
func Poll(ctx context.Context, interval, timeout time.Duration, ready func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := ready(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("after %s: %w", timeout, ErrPollTimeout)
		case <-ticker.C:
		}
	}
}
