package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"democap/internal/config"
	"democap/internal/logging"
	"democap/internal/region"
)

// DefaultWaitTimeout bounds element readiness waits when Options leaves it unset.
const DefaultWaitTimeout = 10 * time.Second

// Options configures the Chromium instance.
type Options struct {
	ExecPath    string
	Headless    bool
	Window      region.Window
	WaitTimeout time.Duration
	Logger      *slog.Logger
}

// OptionsFromConfig maps the browser section of the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ExecPath: cfg.Browser.ExecPath,
		Headless: cfg.Browser.Headless,
		Window: region.Window{
			X:      cfg.Browser.WindowX,
			Y:      cfg.Browser.WindowY,
			Width:  cfg.Browser.WindowWidth,
			Height: cfg.Browser.WindowHeight,
		},
		WaitTimeout: cfg.WaitTimeout(),
	}
}

// Session is one running browser with a single tab.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	waitTimeout time.Duration
	logger      *slog.Logger
	closeOnce   sync.Once
}

// Open launches Chromium and attaches to its first tab. The browser lives
// until Close is called or ctx is cancelled.
func Open(ctx context.Context, opts Options) (*Session, error) {
	logger := logging.NewComponentLogger(opts.Logger, "browser")
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("devtools", logging.String("detail", fmt.Sprintf(format, args...)))
		}),
	)
	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		waitTimeout: opts.WaitTimeout,
		logger:      logger,
	}

	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	if !opts.Headless && opts.Window.Width > 0 && opts.Window.Height > 0 {
		if err := s.SetWindowBounds(ctx, opts.Window); err != nil {
			s.Close()
			return nil, err
		}
	}
	logger.Info("browser started",
		logging.Bool("headless", opts.Headless),
		logging.String("window", fmt.Sprintf("%dx%d+%d+%d", opts.Window.Width, opts.Window.Height, opts.Window.X, opts.Window.Y)),
	)
	return s, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("hide-scrollbars", opts.Headless),
	)
	if opts.Window.Width > 0 && opts.Window.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.Window.Width, opts.Window.Height))
	}
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("window-position", fmt.Sprintf("%d,%d", opts.Window.X, opts.Window.Y)))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	return allocOpts
}

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug("browser close", logging.Error(err))
		}
		s.cancelTab()
		s.cancelAlloc()
	})
}

// run executes actions on the tab. A positive timeout bounds the actions;
// cancelling ctx aborts them without closing the tab.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func isXPath(sel string) bool {
	return strings.HasPrefix(sel, "/") || strings.HasPrefix(sel, "(")
}

func by(sel string) chromedp.QueryOption {
	if isXPath(sel) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// WindowBounds reports the outer position and size of the browser window.
func (s *Session) WindowBounds(ctx context.Context) (region.Window, error) {
	var bounds *cdpbrowser.Bounds
	err := s.run(ctx, s.waitTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		_, b, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		bounds = b
		return err
	}))
	if err != nil {
		return region.Window{}, &region.GeometryError{Reason: fmt.Sprintf("window bounds unavailable: %v", err)}
	}
	if bounds == nil {
		return region.Window{}, &region.GeometryError{Reason: "browser reported no window bounds"}
	}
	return region.Window{
		X:      int(bounds.Left),
		Y:      int(bounds.Top),
		Width:  int(bounds.Width),
		Height: int(bounds.Height),
	}, nil
}

// SetWindowBounds moves and resizes the browser window.
func (s *Session) SetWindowBounds(ctx context.Context, w region.Window) error {
	err := s.run(ctx, s.waitTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		id, _, err := cdpbrowser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return cdpbrowser.SetWindowBounds(id, &cdpbrowser.Bounds{
			Left:        int64(w.X),
			Top:         int64(w.Y),
			Width:       int64(w.Width),
			Height:      int64(w.Height),
			WindowState: cdpbrowser.WindowStateNormal,
		}).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("set window bounds: %w", err)
	}
	return nil
}

// SetViewport pins the page viewport, used for headless frame capture.
func (s *Session) SetViewport(ctx context.Context, width, height int) error {
	err := s.run(ctx, s.waitTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	return nil
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigate", logging.String("url", url))
	if err := s.run(ctx, 0, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until sel is visible or the wait timeout expires.
func (s *Session) WaitVisible(ctx context.Context, sel string) error {
	if err := s.run(ctx, s.waitTimeout, chromedp.WaitVisible(sel, by(sel))); err != nil {
		return s.waitErr(sel, err)
	}
	return nil
}

// Click waits for sel and clicks its centre.
func (s *Session) Click(ctx context.Context, sel string) error {
	if err := s.run(ctx, s.waitTimeout, chromedp.Click(sel, by(sel), chromedp.NodeVisible)); err != nil {
		return s.waitErr(sel, err)
	}
	return nil
}

// SendKeys types text into sel.
func (s *Session) SendKeys(ctx context.Context, sel, text string) error {
	if err := s.run(ctx, s.waitTimeout, chromedp.SendKeys(sel, text, by(sel), chromedp.NodeVisible)); err != nil {
		return s.waitErr(sel, err)
	}
	return nil
}

// Text returns the visible text of the first node matching sel.
func (s *Session) Text(ctx context.Context, sel string) (string, error) {
	var out string
	if err := s.run(ctx, s.waitTimeout, chromedp.Text(sel, &out, by(sel), chromedp.NodeVisible)); err != nil {
		return "", s.waitErr(sel, err)
	}
	return strings.TrimSpace(out), nil
}

// Texts returns the text of every node matching sel, in document order.
func (s *Session) Texts(ctx context.Context, sel string) ([]string, error) {
	var out []string
	if err := s.run(ctx, s.waitTimeout, chromedp.Evaluate(textsScript(sel), &out)); err != nil {
		return nil, fmt.Errorf("read texts of %q: %w", sel, err)
	}
	return out, nil
}

// Attribute returns the named attribute of sel and whether it was present.
func (s *Session) Attribute(ctx context.Context, sel, name string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	if err := s.run(ctx, s.waitTimeout, chromedp.AttributeValue(sel, name, &value, &ok, by(sel))); err != nil {
		return "", false, s.waitErr(sel, err)
	}
	return value, ok, nil
}

// Count returns how many nodes currently match sel without waiting.
func (s *Session) Count(ctx context.Context, sel string) (int, error) {
	var n int
	if err := s.run(ctx, s.waitTimeout, chromedp.Evaluate(countScript(sel), &n)); err != nil {
		return 0, fmt.Errorf("count %q: %w", sel, err)
	}
	return n, nil
}

// ScrollClick scrolls sel into view and clicks it from script, for targets
// the pointer cannot reach reliably.
func (s *Session) ScrollClick(ctx context.Context, sel string) error {
	var clicked bool
	err := s.run(ctx, s.waitTimeout,
		chromedp.ScrollIntoView(sel, by(sel)),
		chromedp.Evaluate(clickScript(sel), &clicked),
	)
	if err != nil {
		return s.waitErr(sel, err)
	}
	if !clicked {
		return fmt.Errorf("element %q disappeared before click", sel)
	}
	return nil
}

// Screenshot captures the current viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, s.waitTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		data, err := page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
		buf = data
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *Session) waitErr(sel string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("element %q not ready after %s: %w", sel, s.waitTimeout, err)
	}
	return fmt.Errorf("element %q: %w", sel, err)
}
