package journey

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"democap/internal/browser"
	"democap/internal/testsupport"
)

type fakeDriver struct {
	calls      []string
	texts      map[string]string
	textSeqs   map[string][][]string
	attrs      map[string]string
	counts     map[string]int
	failClick  map[string]error
	failWait   map[string]error
	cursorErrs int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		texts: map[string]string{
			selFeedback:   "Correct! Well done.",
			selCompletion: "Congratulations, you finished the exercise",
			selFinalScore: "100.0",
		},
		textSeqs: map[string][][]string{
			selOptionLabels: {
				{"<class 'str'>", "<class 'int'>", "<class 'float'>"},
				{"[1, 2, 3]", "(1, 2, 3)"},
			},
		},
		attrs: map[string]string{
			selProgressBar: "width: 100%;",
		},
		counts: map[string]int{
			selVideoFrame:    1,
			selQuestionCards: 3,
		},
		failClick: map[string]error{},
		failWait:  map[string]error{},
	}
}

func (f *fakeDriver) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeDriver) Navigate(_ context.Context, url string) error {
	f.record("navigate %s", url)
	return nil
}

func (f *fakeDriver) WaitVisible(ctx context.Context, sel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("wait %s", sel)
	return f.failWait[sel]
}

func (f *fakeDriver) Click(_ context.Context, sel string) error {
	f.record("click %s", sel)
	return f.failClick[sel]
}

func (f *fakeDriver) SendKeys(_ context.Context, sel, text string) error {
	f.record("keys %s %s", sel, text)
	return nil
}

func (f *fakeDriver) Text(_ context.Context, sel string) (string, error) {
	f.record("text %s", sel)
	return f.texts[sel], nil
}

func (f *fakeDriver) Texts(_ context.Context, sel string) ([]string, error) {
	f.record("texts %s", sel)
	seq := f.textSeqs[sel]
	if len(seq) == 0 {
		return nil, nil
	}
	f.textSeqs[sel] = seq[1:]
	return seq[0], nil
}

func (f *fakeDriver) Attribute(_ context.Context, sel, name string) (string, bool, error) {
	f.record("attr %s %s", sel, name)
	v, ok := f.attrs[sel]
	return v, ok, nil
}

func (f *fakeDriver) Count(_ context.Context, sel string) (int, error) {
	f.record("count %s", sel)
	return f.counts[sel], nil
}

func (f *fakeDriver) ScrollClick(_ context.Context, sel string) error {
	f.record("scrollclick %s", sel)
	return f.failClick[sel]
}

func (f *fakeDriver) MoveCursor(_ context.Context, sel string, opts browser.CursorOptions) error {
	f.record("cursor %s click=%v typing=%v", sel, opts.Click, opts.Typing)
	if f.cursorErrs > 0 {
		f.cursorErrs--
		return errors.New("cursor target missing")
	}
	return nil
}

func testSettings() Settings {
	return Settings{
		BaseURL:      "http://localhost:8000",
		Username:     "alice",
		Password:     "student123",
		PollInterval: time.Millisecond,
		WaitTimeout:  50 * time.Millisecond,
	}
}

func TestStudentJourneyHappyPath(t *testing.T) {
	driver := newFakeDriver()
	runner := NewRunner(driver, testSettings(), nil)

	if err := runner.Run(context.Background(), StudentJourney()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"navigate http://localhost:8000/",
		"keys input[name='username'] alice",
		"keys input[name='password'] student123",
		"navigate http://localhost:8000/courses/",
		"click " + quizRadio(1),
		"click " + quizRadio(0),
		"click " + exerciseRadio(2, 3),
		"scrollclick " + selLogoutLink,
	}
	pos := 0
	for _, call := range driver.calls {
		if pos < len(want) && call == want[pos] {
			pos++
		}
	}
	if pos != len(want) {
		t.Fatalf("missing call %q in order; calls:\n%s", want[pos], strings.Join(driver.calls, "\n"))
	}
	if last := driver.calls[len(driver.calls)-1]; last != "scrollclick "+selLogoutLink {
		t.Fatalf("expected logout to be the last action, got %q", last)
	}
	if n := countPrefix(driver.calls, "scrollclick "+selMarkCompleted); n != 5 {
		t.Fatalf("expected 5 resources marked completed, got %d", n)
	}
}

func TestOptionalVideoFailureIsSkipped(t *testing.T) {
	driver := newFakeDriver()
	driver.failClick[selVideoFrame] = errors.New("frame detached")
	runner := NewRunner(driver, testSettings(), nil)

	if err := runner.Run(context.Background(), StudentJourney()); err != nil {
		t.Fatalf("expected video failure to be tolerated, got %v", err)
	}
}

func TestCursorFailuresAreCosmetic(t *testing.T) {
	driver := newFakeDriver()
	driver.cursorErrs = 3
	runner := NewRunner(driver, testSettings(), nil)
	if err := runner.Run(context.Background(), StudentJourney()[:2]); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestJourneyFailsOnWrongScore(t *testing.T) {
	driver := newFakeDriver()
	driver.texts[selFinalScore] = "66.7"
	runner := NewRunner(driver, testSettings(), nil)

	err := runner.Run(context.Background(), StudentJourney())
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != "exercise" {
		t.Fatalf("expected exercise step to fail, got %q", stepErr.Step)
	}
	if !errors.Is(err, ErrUnexpectedPage) {
		t.Fatalf("expected ErrUnexpectedPage, got %v", err)
	}
	if slices.Contains(driver.calls, "scrollclick "+selLogoutLink) {
		t.Fatal("steps after a failure must not run")
	}
}

func TestJourneyFailsWhenQuizOptionMissing(t *testing.T) {
	driver := newFakeDriver()
	driver.textSeqs[selOptionLabels] = [][]string{{"<class 'str'>"}}
	runner := NewRunner(driver, testSettings(), nil)

	err := runner.Run(context.Background(), StudentJourney())
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "quiz" {
		t.Fatalf("expected quiz failure, got %v", err)
	}
}

func TestLoginRequiresLoginLinkToDisappear(t *testing.T) {
	driver := newFakeDriver()
	driver.counts[selLoginLink] = 1
	runner := NewRunner(driver, testSettings(), nil)

	err := runner.Run(context.Background(), StudentJourney()[:2])
	if !errors.Is(err, browser.ErrPollTimeout) {
		t.Fatalf("expected poll timeout, got %v", err)
	}
}

func TestLoginFailureIsUnexpectedPage(t *testing.T) {
	driver := newFakeDriver()
	driver.failWait[selLogoutLink] = context.DeadlineExceeded
	runner := NewRunner(driver, testSettings(), nil)

	err := runner.Run(context.Background(), StudentJourney()[:2])
	if !errors.Is(err, ErrUnexpectedPage) {
		t.Fatalf("expected ErrUnexpectedPage, got %v", err)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(newFakeDriver(), testSettings(), nil)

	err := runner.Run(ctx, StudentJourney())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPauseIsScaled(t *testing.T) {
	settings := testSettings()
	settings.DelayScale = 0.5
	runner := NewRunner(newFakeDriver(), settings, nil)
	var slept []time.Duration
	runner.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	if err := runner.Pause(context.Background(), PauseView); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if len(slept) != 1 || slept[0] != 1500*time.Millisecond {
		t.Fatalf("expected a 1.5s pause, got %v", slept)
	}
	opts := runner.cursor(true, false)
	if opts.MoveDelay != 250*time.Millisecond || opts.ClickDelay != 150*time.Millisecond {
		t.Fatalf("unexpected cursor delays %+v", opts)
	}

	runner.settings.DelayScale = 0
	if opts := runner.cursor(true, true); opts.MoveDelay != 0 || opts.ClickDelay != 0 {
		t.Fatalf("expected pacing disabled, got %+v", opts)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Journey.BaseURL = "http://example.test:8000/"
	settings := SettingsFromConfig(cfg)
	if settings.BaseURL != "http://example.test:8000" {
		t.Fatalf("expected trailing slash trimmed, got %q", settings.BaseURL)
	}
	runner := NewRunner(newFakeDriver(), settings, nil)
	if got := runner.URL("/courses/"); got != "http://example.test:8000/courses/" {
		t.Fatalf("unexpected URL %q", got)
	}
	if settings.DelayScale != 0 {
		t.Fatalf("expected test config to disable pacing, got %v", settings.DelayScale)
	}
}

func TestPickOption(t *testing.T) {
	labels := []string{"<class 'str'>", "<class 'int'>", "<class 'int'> (again)"}
	if i, ok := PickOption(labels, "<class 'int'>"); !ok || i != 1 {
		t.Fatalf("PickOption = %d, %v", i, ok)
	}
	if i, ok := PickOption(labels, "[1, 2, 3]"); ok || i != -1 {
		t.Fatalf("expected no match, got %d, %v", i, ok)
	}
	if _, ok := PickOption(nil, "x"); ok {
		t.Fatal("expected no match on empty labels")
	}
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100.0", 100, true},
		{" 100 ", 100, true},
		{"100%", 100, true},
		{"87.5", 87.5, true},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseScore(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseScore(%q) = %v, %v", tc.in, got, ok)
		}
	}
}

func TestFullWidth(t *testing.T) {
	for style, want := range map[string]bool{
		"width: 100%;":               true,
		"width:100%":                 true,
		"height: 4px; width: 100%; ": true,
		"width: 60%;":                false,
		"max-width: 100%;":           false,
		"":                           false,
	} {
		if got := FullWidth(style); got != want {
			t.Fatalf("FullWidth(%q) = %v, want %v", style, got, want)
		}
	}
}

func countPrefix(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
