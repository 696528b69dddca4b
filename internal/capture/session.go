package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"democap/internal/catalog"
	"democap/internal/config"
	"democap/internal/encoder"
	"democap/internal/logging"
	"democap/internal/region"
)

// GeometrySource reports the on-screen bounds of the window to record.
type GeometrySource interface {
	WindowBounds(ctx context.Context) (region.Window, error)
}

// Ledger persists recording outcomes. *catalog.Store satisfies it.
type Ledger interface {
	Begin(ctx context.Context, rec catalog.Recording) (*catalog.Recording, error)
	Finish(ctx context.Context, id string, outcome catalog.Outcome) error
}

// Verifier inspects a finished artifact beyond the non-empty check.
type Verifier func(ctx context.Context, path string) error

// Options configures a Session.
type Options struct {
	OutputDir   string
	Settings    encoder.Settings
	FullDisplay region.Region
	Margin      int
	Grace       time.Duration
	WarmUp      time.Duration
	StopTimeout time.Duration
	// LockDir holds per-display lock files; empty disables locking.
	LockDir string
	Ledger  Ledger
	Verify  Verifier
	Logger  *slog.Logger
	// Now supplies the wall clock used for output file names.
	Now func() time.Time
}

// OptionsFromConfig maps configuration onto session options. Ledger and
// Verify are left for the caller to wire.
func OptionsFromConfig(cfg *config.Config) Options {
	full := region.Region{}
	if w, h, err := region.ParseSize(cfg.Encoder.DisplaySize); err == nil {
		full = region.Region{Width: w, Height: h}
	}
	return Options{
		OutputDir:   cfg.Paths.RecordingsDir,
		Settings:    encoder.NewSettings(cfg.Encoder),
		FullDisplay: full,
		Margin:      cfg.Capture.Margin,
		Grace:       cfg.GraceWindow(),
		WarmUp:      cfg.WarmUp(),
		StopTimeout: cfg.StopTimeout(),
		LockDir:     cfg.LockDir(),
	}
}

// Result summarizes a stopped recording.
type Result struct {
	ID         string
	OutputPath string
	Region     region.Region
	SizeBytes  int64
	Duration   time.Duration
	ExitCode   int
	Killed     bool
}

// Session coordinates one recording at a time: it owns the encoder child
// process between Start and Stop. A stopped session may be started again.
type Session struct {
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	proc      *encoder.Process
	lock      *flock.Flock
	id        string
	output    string
	region    region.Region
	startedAt time.Time
}

// NewSession builds an idle session.
func NewSession(opts Options) *Session {
	if opts.Settings.Binary == "" {
		opts.Settings = encoder.DefaultSettings()
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "capture"),
	}
}

// Recording reports whether an encoder is currently owned by the session.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

// OutputPath returns the artifact path of the current or most recent recording.
func (s *Session) OutputPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Start records the window reported by src. A nil src records the full display.
func (s *Session) Start(ctx context.Context, src GeometrySource) error {
	if src == nil {
		return s.StartRegion(ctx, nil)
	}
	win, err := src.WindowBounds(ctx)
	if err != nil {
		var geomErr *region.GeometryError
		if errors.As(err, &geomErr) {
			return err
		}
		return &region.GeometryError{Reason: fmt.Sprintf("query window bounds: %v", err)}
	}
	r, err := region.FromWindow(win, s.opts.Margin)
	if err != nil {
		return err
	}
	return s.StartRegion(ctx, &r)
}

// StartRegion launches the encoder over r (nil for the full display) and
// blocks for the warm-up delay once the grace window has passed.
func (s *Session) StartRegion(ctx context.Context, r *region.Region) error {
	target := s.opts.FullDisplay
	if r != nil {
		target = *r
	}
	target = target.Even()
	if err := target.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.proc != nil {
		s.mu.Unlock()
		return ErrAlreadyRecording
	}
	err := s.launch(ctx, target)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if s.opts.WarmUp > 0 {
		timer := time.NewTimer(s.opts.WarmUp)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			_, _ = s.Stop(context.WithoutCancel(ctx))
			return ctx.Err()
		}
	}
	return nil
}

func (s *Session) launch(ctx context.Context, target region.Region) error {
	if err := os.MkdirAll(s.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var lock *flock.Flock
	if s.opts.LockDir != "" {
		var err error
		if lock, err = lockDisplay(s.opts.LockDir, s.opts.Settings.Display); err != nil {
			return err
		}
	}

	startedAt := s.opts.Now()
	output, err := reserveOutput(s.opts.OutputDir, startedAt)
	if err != nil {
		releaseLock(s.logger, lock)
		return err
	}
	id := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldRecordingID, id))

	s.begin(ctx, logger, catalog.Recording{
		ID:         id,
		Kind:       catalog.KindLive,
		OutputPath: output,
		Display:    s.opts.Settings.Display,
		Region:     target.String(),
		StartedAt:  startedAt,
	})

	args := encoder.ScreenGrabArgs(s.opts.Settings, target, output)
	logger.Debug("launching encoder",
		logging.String("binary", s.opts.Settings.Binary),
		logging.Any("args", args),
	)
	proc, err := encoder.Start(ctx, s.opts.Settings.Binary, args, s.opts.Grace)
	if err != nil {
		releaseLock(logger, lock)
		removeEmptyOutput(logger, output)
		s.finish(context.WithoutCancel(ctx), logger, id, catalog.Outcome{Status: catalog.StatusFailed, ErrorMessage: err.Error()})
		logger.Error("encoder launch failed", logging.Error(err))
		return err
	}

	s.proc = proc
	s.lock = lock
	s.id = id
	s.output = output
	s.region = target
	s.startedAt = time.Now()
	logger.Info("recording started",
		logging.String("output", output),
		logging.String("region", target.String()),
		logging.String("display", s.opts.Settings.Display),
		logging.Int("pid", proc.Pid()),
	)
	return nil
}

// Stop ends the current recording: SIGTERM, bounded wait, SIGKILL on expiry.
// The lock is released and the encoder reaped before the artifact is checked,
// so an *OutputMissingError is only reported after cleanup. Stop on an idle
// session is a no-op.
func (s *Session) Stop(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return Result{}, nil
	}

	logger := s.logger.With(logging.String(logging.FieldRecordingID, s.id))
	stopped := s.proc.Stop(s.opts.StopTimeout)
	releaseLock(logger, s.lock)

	result := Result{
		ID:         s.id,
		OutputPath: s.output,
		Region:     s.region,
		Duration:   time.Since(s.startedAt),
		ExitCode:   stopped.ExitCode,
		Killed:     stopped.Killed,
	}
	s.proc = nil
	s.lock = nil

	if stopped.Stderr != "" {
		logger.Debug("encoder stderr", logging.String("stderr", stopped.Stderr))
	}
	if stopped.Killed {
		logger.Warn("encoder ignored SIGTERM; killed",
			logging.Duration("stop_timeout", s.opts.StopTimeout),
		)
	}

	outcome := catalog.Outcome{Status: catalog.StatusCompleted}
	err := s.checkOutput(ctx, result.OutputPath, &result.SizeBytes)
	if err != nil {
		outcome.Status = catalog.StatusMissing
		var missing *OutputMissingError
		if errors.As(err, &missing) {
			removeEmptyOutput(logger, result.OutputPath)
		} else {
			outcome.Status = catalog.StatusFailed
		}
		outcome.ErrorMessage = err.Error()
	}
	outcome.SizeBytes = result.SizeBytes
	s.finish(ctx, logger, result.ID, outcome)

	if err != nil {
		logger.Error("recording output invalid", logging.Error(err))
		if stopped.Err != nil {
			return result, errors.Join(err, stopped.Err)
		}
		return result, err
	}
	logger.Info("recording saved",
		logging.String("output", result.OutputPath),
		logging.Int64("size_bytes", result.SizeBytes),
		logging.Duration("duration", result.Duration),
	)
	return result, stopped.Err
}

func (s *Session) checkOutput(ctx context.Context, path string, size *int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return &OutputMissingError{Path: path, Err: err}
	}
	*size = info.Size()
	if info.Size() == 0 {
		return &OutputMissingError{Path: path}
	}
	if s.opts.Verify != nil {
		if err := s.opts.Verify(ctx, path); err != nil {
			return fmt.Errorf("verify recording: %w", err)
		}
	}
	return nil
}

func (s *Session) begin(ctx context.Context, logger *slog.Logger, rec catalog.Recording) {
	if s.opts.Ledger == nil {
		return
	}
	if _, err := s.opts.Ledger.Begin(ctx, rec); err != nil {
		logger.Warn("catalog insert failed; recording continues untracked", logging.Error(err))
	}
}

func (s *Session) finish(ctx context.Context, logger *slog.Logger, id string, outcome catalog.Outcome) {
	if s.opts.Ledger == nil {
		return
	}
	if err := s.opts.Ledger.Finish(ctx, id, outcome); err != nil {
		logger.Warn("catalog update failed", logging.Error(err))
	}
}

func releaseLock(logger *slog.Logger, lock *flock.Flock) {
	if lock == nil {
		return
	}
	if err := lock.Unlock(); err != nil {
		logger.Warn("failed to release display lock", logging.Error(err))
	}
}

const maxOutputSuffix = 100

// reserveOutput claims the first free name derived from t in dir by creating
// it exclusively. Later candidates carry a _N suffix.
func reserveOutput(dir string, t time.Time) (string, error) {
	base := strings.TrimSuffix(OutputName(t), ".mp4")
	for n := 0; n < maxOutputSuffix; n++ {
		name := base + ".mp4"
		if n > 0 {
			name = fmt.Sprintf("%s_%d.mp4", base, n)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return path, f.Close()
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("reserve output: %w", err)
		}
	}
	return "", fmt.Errorf("reserve output: no free name for %s in %s", base, dir)
}

// removeEmptyOutput drops a reserved artifact the encoder never wrote to.
func removeEmptyOutput(logger *slog.Logger, path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > 0 {
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Warn("failed to remove empty output", logging.String("path", path), logging.Error(err))
	}
}

// OutputName renders demo_<YYYYMMDD_HHMMSS>.mp4 from the local wall clock.
func OutputName(t time.Time) string {
	return "demo_" + t.Format("20060102_150405") + ".mp4"
}
