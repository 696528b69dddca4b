package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"democap/internal/browser"
	"democap/internal/config"
	"democap/internal/logging"
)

// Driver is the browser surface the walkthrough needs.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel string) error
	Click(ctx context.Context, sel string) error
	SendKeys(ctx context.Context, sel, text string) error
	Text(ctx context.Context, sel string) (string, error)
	Texts(ctx context.Context, sel string) ([]string, error)
	Attribute(ctx context.Context, sel, name string) (string, bool, error)
	Count(ctx context.Context, sel string) (int, error)
	ScrollClick(ctx context.Context, sel string) error
	MoveCursor(ctx context.Context, sel string, opts browser.CursorOptions) error
}

var _ Driver = (*browser.Session)(nil)

// ErrUnexpectedPage marks a page that loaded but did not show what the step expected.
var ErrUnexpectedPage = errors.New("unexpected page state")

// Settings carries the walkthrough target and pacing.
type Settings struct {
	BaseURL  string
	Username string
	Password string
	// DelayScale multiplies every pacing pause; 0 disables pacing.
	DelayScale float64
	// PollInterval and WaitTimeout bound readiness polling.
	PollInterval time.Duration
	WaitTimeout  time.Duration
}

// SettingsFromConfig maps the journey and browser sections.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		BaseURL:      strings.TrimRight(cfg.Journey.BaseURL, "/"),
		Username:     cfg.Journey.Username,
		Password:     cfg.Journey.Password,
		DelayScale:   cfg.Journey.DelayScale,
		PollInterval: 200 * time.Millisecond,
		WaitTimeout:  cfg.WaitTimeout(),
	}
}

// Step is one named stage of a walkthrough. Optional steps log failures and
// let the walkthrough continue.
type Step struct {
	Name     string
	Optional bool
	Run      func(ctx context.Context, r *Runner) error
}

// StepError reports the step that stopped a walkthrough.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("journey step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes steps in order against a Driver.
type Runner struct {
	driver   Driver
	settings Settings
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner constructs a runner. A nil logger discards output.
func NewRunner(driver Driver, settings Settings, logger *slog.Logger) *Runner {
	if settings.WaitTimeout <= 0 {
		settings.WaitTimeout = browser.DefaultWaitTimeout
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = 200 * time.Millisecond
	}
	return &Runner{
		driver:   driver,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "journey"),
		sleep:    sleepContext,
	}
}

// Run executes steps sequentially and stops at the first required failure.
func (r *Runner) Run(ctx context.Context, steps []Step) error {
	started := time.Now()
	for i, step := range steps {
		stepCtx := logging.WithStep(ctx, step.Name)
		logger := logging.WithContext(stepCtx, r.logger)
		logger.Info("step started",
			logging.String(logging.FieldEventType, "step_start"),
			logging.Int("index", i+1),
			logging.Int("total", len(steps)),
		)
		stepStarted := time.Now()
		err := step.Run(stepCtx, r)
		if err != nil {
			if ctx.Err() != nil {
				return &StepError{Step: step.Name, Err: ctx.Err()}
			}
			if step.Optional {
				logger.Warn("optional step skipped",
					logging.String(logging.FieldEventType, "step_skipped"),
					logging.Error(err),
				)
				continue
			}
			logger.Error("step failed",
				logging.String(logging.FieldEventType, "step_failure"),
				logging.Error(err),
			)
			return &StepError{Step: step.Name, Err: err}
		}
		logger.Info("step completed",
			logging.String(logging.FieldEventType, "step_complete"),
			logging.Duration("elapsed", time.Since(stepStarted)),
		)
	}
	r.logger.Info("journey completed",
		logging.Int("steps", len(steps)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// URL joins a site-relative path onto the base URL.
func (r *Runner) URL(path string) string {
	if path == "" {
		return r.settings.BaseURL + "/"
	}
	return r.settings.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// Pause waits d scaled by the delay scale.
func (r *Runner) Pause(ctx context.Context, d time.Duration) error {
	return r.sleep(ctx, r.scaled(d))
}

func (r *Runner) scaled(d time.Duration) time.Duration {
	if r.settings.DelayScale <= 0 {
		return 0
	}
	return time.Duration(float64(d) * r.settings.DelayScale)
}

// cursor returns pacing-aware cursor options.
func (r *Runner) cursor(click, typing bool) browser.CursorOptions {
	return browser.CursorOptions{
		Click:      click,
		Typing:     typing,
		MoveDelay:  r.scaled(browser.DefaultMoveDelay),
		ClickDelay: r.scaled(browser.DefaultClickDelay),
	}
}

// Point moves the demo cursor onto sel. Cursor failures are cosmetic and
// only logged.
func (r *Runner) Point(ctx context.Context, sel string, click, typing bool) {
	if err := r.driver.MoveCursor(ctx, sel, r.cursor(click, typing)); err != nil {
		logging.WithContext(ctx, r.logger).Debug("cursor move failed",
			logging.String("selector", sel),
			logging.Error(err),
		)
	}
}

// ClickWithCursor points at sel, plays the click animation and clicks it.
func (r *Runner) ClickWithCursor(ctx context.Context, sel string) error {
	if err := r.driver.WaitVisible(ctx, sel); err != nil {
		return err
	}
	r.Point(ctx, sel, true, false)
	return r.driver.Click(ctx, sel)
}

// Type points at sel with the typing indicator and sends text.
func (r *Runner) Type(ctx context.Context, sel, text string) error {
	if err := r.driver.WaitVisible(ctx, sel); err != nil {
		return err
	}
	r.Point(ctx, sel, true, true)
	return r.driver.SendKeys(ctx, sel, text)
}

// WaitGone polls until no node matches sel.
func (r *Runner) WaitGone(ctx context.Context, sel string) error {
	err := browser.Poll(ctx, r.settings.PollInterval, r.settings.WaitTimeout, func(ctx context.Context) (bool, error) {
		n, err := r.driver.Count(ctx, sel)
		return n == 0, err
	})
	if err != nil {
		return fmt.Errorf("%q still present: %w", sel, err)
	}
	return nil
}

// ExpectText waits for sel and requires its text to contain want.
func (r *Runner) ExpectText(ctx context.Context, sel, want string) (string, error) {
	if err := r.driver.WaitVisible(ctx, sel); err != nil {
		return "", err
	}
	text, err := r.driver.Text(ctx, sel)
	if err != nil {
		return "", err
	}
	if !strings.Contains(text, want) {
		return text, fmt.Errorf("%w: %q shows %q, want %q", ErrUnexpectedPage, sel, text, want)
	}
	return text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
