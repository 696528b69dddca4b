package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// DefaultMoveDelay matches the cursor's CSS transition.
	DefaultMoveDelay = 500 * time.Millisecond
	// DefaultClickDelay matches the click keyframe duration.
	DefaultClickDelay = 300 * time.Millisecond
)

// CursorOptions selects the animations played once the cursor arrives.
type CursorOptions struct {
	Click  bool
	Typing bool
	// MoveDelay and ClickDelay are waited out after each animation; zero skips the wait.
	MoveDelay  time.Duration
	ClickDelay time.Duration
}

const installCursorScript = `(() => {
  if (!document.getElementById('demo-cursor')) {
    const cursor = document.createElement('div');
    cursor.id = 'demo-cursor';
    Object.assign(cursor.style, {
      position: 'fixed',
      width: '20px',
      height: '20px',
      backgroundColor: '#ff4444',
      borderRadius: '50%',
      pointerEvents: 'none',
      transition: 'all 0.5s ease',
      zIndex: '10000',
      opacity: '0.5',
      boxShadow: '0 0 10px rgba(255,68,68,0.5)',
    });
    document.body.appendChild(cursor);
  }
  if (!document.getElementById('cursor-animations')) {
    const style = document.createElement('style');
    style.id = 'cursor-animations';
    style.textContent = '@keyframes cursorClick { 0% { transform: scale(1); } 50% { transform: scale(0.8); } 100% { transform: scale(1); } } ' +
      '@keyframes cursorType { 0% { opacity: 0.5; } 50% { opacity: 1; } 100% { opacity: 0.5; } }';
    document.head.appendChild(style);
  }
  return true;
})()`

const clickAnimationScript = `(() => {
  const cursor = document.getElementById('demo-cursor');
  if (!cursor) return false;
  cursor.style.animation = 'cursorClick 0.3s ease';
  setTimeout(() => { cursor.style.animation = ''; }, 300);
  return true;
})()`

const typingAnimationScript = `(() => {
  const cursor = document.getElementById('demo-cursor');
  if (!cursor) return false;
  cursor.style.animation = 'cursorType 1s ease infinite';
  return true;
})()`

func moveCursorScript(sel string) string {
	return withNodes(sel, `const cursor = document.getElementById('demo-cursor');
if (!cursor || !nodes.length) return false;
const rect = nodes[0].getBoundingClientRect();
cursor.style.animation = '';
cursor.style.left = (rect.left + rect.width / 2) + 'px';
cursor.style.top = (rect.top + rect.height / 2) + 'px';
return true;`)
}

// MoveCursor glides the demo cursor to the centre of sel, injecting the
// overlay on first use in each page.
func (s *Session) MoveCursor(ctx context.Context, sel string, opts CursorOptions) error {
	var installed, moved bool
	err := s.run(ctx, s.waitTimeout,
		chromedp.WaitVisible(sel, by(sel)),
		chromedp.Evaluate(installCursorScript, &installed),
		chromedp.Evaluate(moveCursorScript(sel), &moved),
	)
	if err != nil {
		return s.waitErr(sel, err)
	}
	if !moved {
		return fmt.Errorf("cursor target %q not found", sel)
	}
	if err := sleep(ctx, opts.MoveDelay); err != nil {
		return err
	}
	if opts.Click {
		var ok bool
		if err := s.run(ctx, s.waitTimeout, chromedp.Evaluate(clickAnimationScript, &ok)); err != nil {
			return fmt.Errorf("cursor click animation: %w", err)
		}
		if err := sleep(ctx, opts.ClickDelay); err != nil {
			return err
		}
	}
	if opts.Typing {
		var ok bool
		if err := s.run(ctx, s.waitTimeout, chromedp.Evaluate(typingAnimationScript, &ok)); err != nil {
			return fmt.Errorf("cursor typing animation: %w", err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
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
