package encoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

const tailLimit = 64 << 10

// LaunchError reports an encoder that could not be started or exited inside the grace window.
type LaunchError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *LaunchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "encoder %s failed to launch", e.Binary)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		fmt.Fprintf(&b, ": exited with status %d", e.ExitCode)
	}
	if tail := lastLines(e.Stderr, 5); tail != "" {
		fmt.Fprintf(&b, ": %s", tail)
	}
	return b.String()
}

func (e *LaunchError) Unwrap() error { return e.Err }

// StopResult describes how a long-running encoder ended.
type StopResult struct {
	// ExitCode is -1 when the process was ended by a signal.
	ExitCode int
	// Killed reports escalation to SIGKILL after the stop timeout.
	Killed bool
	// Stderr holds the tail of the encoder's diagnostic output.
	Stderr string
	// Err is set when signalling failed or the output pipes could not be drained.
	Err      error
	Duration time.Duration
}

// Process is an encoder running in its own process group.
type Process struct {
	cmd    *exec.Cmd
	done   chan struct{}
	stdout *tailBuffer
	stderr *tailBuffer

	drainErr error
	waitErr  error

	stopOnce sync.Once
	result   StopResult
}

// Start launches binary with args in a new process group and continuously
// drains its stdout and stderr. If the child exits before grace elapses the
// process has already been reaped and a *LaunchError is returned.
func Start(ctx context.Context, binary string, args []string, grace time.Duration) (*Process, error) {
	cmd := exec.Command(binary, args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Binary: binary, ExitCode: -1, Err: err}
	}

	p := &Process{
		cmd:    cmd,
		done:   make(chan struct{}),
		stdout: newTailBuffer(tailLimit),
		stderr: newTailBuffer(tailLimit),
	}

	var drains errgroup.Group
	drains.Go(func() error { return drain(stdout, p.stdout) })
	drains.Go(func() error { return drain(stderr, p.stderr) })
	go func() {
		// Wait must not run until both pipes reach EOF.
		p.drainErr = drains.Wait()
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	if grace <= 0 {
		select {
		case <-p.done:
			return nil, p.launchError(binary)
		default:
			return p, nil
		}
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-p.done:
		return nil, p.launchError(binary)
	case <-ctx.Done():
		p.Stop(grace)
		return nil, ctx.Err()
	case <-timer.C:
		return p, nil
	}
}

func (p *Process) launchError(binary string) *LaunchError {
	return &LaunchError{
		Binary:   binary,
		ExitCode: p.cmd.ProcessState.ExitCode(),
		Stderr:   p.stderr.String(),
	}
}

// Pid returns the encoder's process id, which is also its process group id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Stop sends SIGTERM to the process group, waits up to timeout and then
// escalates to SIGKILL. Only the first call signals; later calls return the
// same result.
func (p *Process) Stop(timeout time.Duration) StopResult {
	p.stopOnce.Do(func() {
		p.result = p.stop(timeout)
	})
	return p.result
}

func (p *Process) stop(timeout time.Duration) StopResult {
	started := time.Now()
	var result StopResult

	select {
	case <-p.done:
	default:
		if err := p.signal(unix.SIGTERM); err != nil {
			result.Err = fmt.Errorf("send SIGTERM: %w", err)
		}
		timer := time.NewTimer(timeout)
		select {
		case <-p.done:
		case <-timer.C:
			result.Killed = true
			if err := p.signal(unix.SIGKILL); err != nil {
				result.Err = errors.Join(result.Err, fmt.Errorf("send SIGKILL: %w", err))
			}
			<-p.done
		}
		timer.Stop()
	}

	result.ExitCode = p.cmd.ProcessState.ExitCode()
	result.Stderr = p.stderr.String()
	result.Duration = time.Since(started)
	if p.drainErr != nil {
		result.Err = errors.Join(result.Err, fmt.Errorf("drain output: %w", p.drainErr))
	}
	var exitErr *exec.ExitError
	if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
		result.Err = errors.Join(result.Err, fmt.Errorf("wait encoder: %w", p.waitErr))
	}
	return result
}

func (p *Process) signal(sig syscall.Signal) error {
	err := unix.Kill(-p.cmd.Process.Pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func drain(r io.Reader, dst io.Writer) error {
	_, err := io.Copy(dst, r)
	if errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

// RunError reports a one-shot encode that did not complete successfully.
type RunError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("encoder %s failed: %v", e.Binary, e.Err)
	if tail := lastLines(e.Stderr, 5); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// Run executes binary to completion, returning a *RunError with the stderr tail on failure.
func Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stderr := newTailBuffer(tailLimit)
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		return &RunError{Binary: binary, ExitCode: exitCode, Stderr: stderr.String(), Err: err}
	}
	return nil
}

func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " | "))
}
