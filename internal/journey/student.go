package journey

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Demo pacing. Every pause is multiplied by Settings.DelayScale.
const (
	PauseBrief    = 1 * time.Second
	PauseStep     = 2 * time.Second
	PauseView     = 3 * time.Second
	PauseWatch    = 5 * time.Second
	PauseSettling = 10 * time.Second
)

// Selectors used by the student walkthrough.
const (
	selLoginLink      = "//a[@class='nav-link' and text()='Login']"
	selLogoutLink     = "//a[@class='nav-link' and text()='Logout']"
	selUsername       = "input[name='username']"
	selPassword       = "input[name='password']"
	selSubmit         = "//button[@type='submit']"
	selUnitTitle      = "//h1[contains(text(), 'Installing Python')]"
	selResources      = "//h2[text()='Resources']"
	selResourcesList  = "#resources-list"
	selMarkdown       = "//div[contains(@class, 'markdown-content')]"
	selMarkCompleted  = "#mark-completed"
	selVideoFrame     = "iframe"
	selQuestionText   = "#question-text"
	selOptionRows     = "#options-container .form-check"
	selOptionLabels   = "#options-container .form-check-label"
	selCheckAnswer    = "#check-answer"
	selShowHint       = "#show-hint"
	selShowAnswer     = "#show-answer"
	selNextQuestion   = "#next-question"
	selFeedback       = ".alert-success"
	selHint           = ".alert-info"
	selQuizCompleted  = "//div[@class='card-body']//span[contains(@class, 'text-success') and contains(., 'Completed')]"
	selQuestionCards  = "#exercise-form .card-body"
	selSubmitExercise = "//button[text()='Submit Exercise']"
	selCompletion     = "#completion-message"
	selFinalScore     = "#final-score"
	selProgressBar    = ".progress-bar"
)

// Course and resource titles shown by the seeded learning site.
const (
	EnrolledCourse   = "Python for Beginners"
	OtherCourse      = "Advanced Django"
	UnitTitle        = "Installing Python"
	GuideTitle       = "Python Installation Guide"
	VerifyTitle      = "Verifying Your Installation"
	VideoTitle       = "Raspberry Pi Pico Oscilloscope"
	QuizTitle        = "Python Basics Quiz"
	ExerciseTitle    = "Python Installation Exercise"
	FirstQuizAnswer  = "<class 'int'>"
	SecondQuizAnswer = "[1, 2, 3]"
)

// ExerciseAnswers holds the option value to pick for each exercise question.
var ExerciseAnswers = []int{0, 1, 3}

func courseButton(course, label string) string {
	return fmt.Sprintf("//div[contains(@class, 'course-card') and contains(., '%s')]//a[text()='%s']", course, label)
}

func unitLink(title string) string {
	return fmt.Sprintf("//div[contains(@class, 'unit-card')]//a[contains(., '%s')]", title)
}

// resourceLink selects the anchor two levels above a resource heading.
func resourceLink(title string) string {
	return fmt.Sprintf("//*[self::h5 or self::h6][contains(@class, 'mb-1') and contains(text(), '%s')]/../..", title)
}

func quizRadio(index int) string {
	return fmt.Sprintf("(//div[@id='options-container']//input[@type='radio'])[%d]", index+1)
}

func exerciseRadio(question, value int) string {
	return fmt.Sprintf("(//form[@id='exercise-form']//div[contains(@class, 'card-body')])[%d]//*[contains(@class, 'options')]//input[@value='%d']", question+1, value)
}

// StudentJourney returns the full student walkthrough: login, course list,
// unit resources, quiz, exercise and logout.
func StudentJourney() []Step {
	return []Step{
		{Name: "home", Run: openHome},
		{Name: "login", Run: login},
		{Name: "courses", Run: courses},
		{Name: "unit", Run: unit},
		{Name: "guide", Run: guide},
		{Name: "verify", Run: verifyInstall},
		{Name: "video", Optional: true, Run: playVideo},
		{Name: "video_complete", Run: completeVideo},
		{Name: "quiz", Run: quiz},
		{Name: "exercise", Run: exercise},
		{Name: "logout", Run: logout},
	}
}

func openHome(ctx context.Context, r *Runner) error {
	if err := r.driver.Navigate(ctx, r.URL("")); err != nil {
		return err
	}
	return r.Pause(ctx, PauseSettling)
}

func login(ctx context.Context, r *Runner) error {
	if err := r.ClickWithCursor(ctx, selLoginLink); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseStep); err != nil {
		return err
	}
	if err := r.Type(ctx, selUsername, r.settings.Username); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseBrief); err != nil {
		return err
	}
	if err := r.Type(ctx, selPassword, r.settings.Password); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	if err := r.ClickWithCursor(ctx, selSubmit); err != nil {
		return err
	}
	if err := r.driver.WaitVisible(ctx, selLogoutLink); err != nil {
		return fmt.Errorf("%w: login did not succeed: %v", ErrUnexpectedPage, err)
	}
	if err := r.WaitGone(ctx, selLoginLink); err != nil {
		return err
	}
	return r.Pause(ctx, PauseStep)
}

func courses(ctx context.Context, r *Runner) error {
	if err := r.driver.Navigate(ctx, r.URL("courses/")); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	continueLearning := courseButton(EnrolledCourse, "Continue Learning")
	if err := r.driver.WaitVisible(ctx, continueLearning); err != nil {
		return err
	}
	if err := r.driver.WaitVisible(ctx, courseButton(OtherCourse, "Enroll")); err != nil {
		return err
	}
	if err := r.ClickWithCursor(ctx, continueLearning); err != nil {
		return err
	}
	return r.Pause(ctx, PauseView)
}

func unit(ctx context.Context, r *Runner) error {
	if err := r.ClickWithCursor(ctx, unitLink(UnitTitle)); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	for _, sel := range []string{selUnitTitle, selResources, selResourcesList} {
		if err := r.driver.WaitVisible(ctx, sel); err != nil {
			return err
		}
	}
	return nil
}

// openResource follows a resource link, checks the rendered page and pauses on it.
func openResource(ctx context.Context, r *Runner, link, ready string) error {
	if err := r.ClickWithCursor(ctx, link); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	if err := r.driver.WaitVisible(ctx, ready); err != nil {
		return err
	}
	return r.Pause(ctx, PauseStep)
}

func markCompleted(ctx context.Context, r *Runner) error {
	if err := r.driver.WaitVisible(ctx, selMarkCompleted); err != nil {
		return err
	}
	r.Point(ctx, selMarkCompleted, false, false)
	if err := r.driver.ScrollClick(ctx, selMarkCompleted); err != nil {
		return err
	}
	return r.Pause(ctx, PauseStep)
}

func guide(ctx context.Context, r *Runner) error {
	link := fmt.Sprintf("//h5[contains(@class, 'text-primary') and contains(text(), '%s')]", GuideTitle)
	if err := openResource(ctx, r, link, selMarkdown); err != nil {
		return err
	}
	return markCompleted(ctx, r)
}

func verifyInstall(ctx context.Context, r *Runner) error {
	if err := openResource(ctx, r, resourceLink(VerifyTitle), selMarkdown); err != nil {
		return err
	}
	return markCompleted(ctx, r)
}

// playVideo clicks the embedded player to start and pause playback. The
// player lives in a cross-origin frame, so the click lands on the frame itself.
func playVideo(ctx context.Context, r *Runner) error {
	if err := openResource(ctx, r, resourceLink(VideoTitle), selVideoFrame); err != nil {
		return err
	}
	if err := r.ClickWithCursor(ctx, selVideoFrame); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	if err := r.Pause(ctx, PauseWatch); err != nil {
		return err
	}
	if err := r.ClickWithCursor(ctx, selVideoFrame); err != nil {
		return fmt.Errorf("pause playback: %w", err)
	}
	return r.Pause(ctx, PauseStep)
}

func completeVideo(ctx context.Context, r *Runner) error {
	n, err := r.driver.Count(ctx, selVideoFrame)
	if err != nil {
		return err
	}
	if n == 0 {
		if err := openResource(ctx, r, resourceLink(VideoTitle), selVideoFrame); err != nil {
			return err
		}
	}
	return markCompleted(ctx, r)
}

func quiz(ctx context.Context, r *Runner) error {
	if err := r.ClickWithCursor(ctx, resourceLink(QuizTitle)); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	quizTitle := fmt.Sprintf("//h1[contains(text(), '%s')]", QuizTitle)
	for _, sel := range []string{quizTitle, selQuestionText, selOptionRows, selCheckAnswer, selShowHint, selShowAnswer} {
		if err := r.driver.WaitVisible(ctx, sel); err != nil {
			return err
		}
	}
	if err := r.Pause(ctx, PauseStep); err != nil {
		return err
	}

	if err := answerQuestion(ctx, r, FirstQuizAnswer); err != nil {
		return fmt.Errorf("first question: %w", err)
	}
	if err := r.driver.ScrollClick(ctx, selNextQuestion); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseStep); err != nil {
		return err
	}

	if err := r.ClickWithCursor(ctx, selShowHint); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	if err := r.driver.WaitVisible(ctx, selHint); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseStep); err != nil {
		return err
	}
	if err := answerQuestion(ctx, r, SecondQuizAnswer); err != nil {
		return fmt.Errorf("second question: %w", err)
	}

	if err := markCompleted(ctx, r); err != nil {
		return err
	}
	if err := r.driver.WaitVisible(ctx, selQuizCompleted); err != nil {
		return err
	}
	return r.Pause(ctx, PauseStep)
}

// answerQuestion selects the option labelled want, checks it and requires
// positive feedback.
func answerQuestion(ctx context.Context, r *Runner, want string) error {
	if err := r.driver.WaitVisible(ctx, selOptionRows); err != nil {
		return err
	}
	labels, err := r.driver.Texts(ctx, selOptionLabels)
	if err != nil {
		return err
	}
	idx, ok := PickOption(labels, want)
	if !ok {
		return fmt.Errorf("%w: no option labelled %q among %q", ErrUnexpectedPage, want, labels)
	}
	if err := r.ClickWithCursor(ctx, quizRadio(idx)); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseStep); err != nil {
		return err
	}
	if err := r.ClickWithCursor(ctx, selCheckAnswer); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	if _, err := r.ExpectText(ctx, selFeedback, "Correct"); err != nil {
		return err
	}
	return r.Pause(ctx, PauseStep)
}

func exercise(ctx context.Context, r *Runner) error {
	if err := r.ClickWithCursor(ctx, resourceLink(ExerciseTitle)); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	if err := r.driver.WaitVisible(ctx, selQuestionCards); err != nil {
		return err
	}
	questions, err := r.driver.Count(ctx, selQuestionCards)
	if err != nil {
		return err
	}
	if questions > len(ExerciseAnswers) {
		return fmt.Errorf("%w: exercise has %d questions, answers known for %d", ErrUnexpectedPage, questions, len(ExerciseAnswers))
	}
	for i := 0; i < questions; i++ {
		radio := exerciseRadio(i, ExerciseAnswers[i])
		if err := r.Pause(ctx, PauseBrief); err != nil {
			return err
		}
		if err := r.ClickWithCursor(ctx, radio); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		if err := r.Pause(ctx, PauseStep); err != nil {
			return err
		}
	}
	if err := r.Pause(ctx, PauseBrief); err != nil {
		return err
	}
	if err := r.ClickWithCursor(ctx, selSubmitExercise); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}

	if _, err := r.ExpectText(ctx, selCompletion, "Congratulations"); err != nil {
		return err
	}
	if err := r.Pause(ctx, PauseView); err != nil {
		return err
	}
	scoreText, err := r.driver.Text(ctx, selFinalScore)
	if err != nil {
		return err
	}
	if score, ok := ParseScore(scoreText); !ok || score != 100 {
		return fmt.Errorf("%w: final score %q, want 100", ErrUnexpectedPage, scoreText)
	}
	if err := r.Pause(ctx, PauseStep); err != nil {
		return err
	}
	style, _, err := r.driver.Attribute(ctx, selProgressBar, "style")
	if err != nil {
		return err
	}
	if !FullWidth(style) {
		return fmt.Errorf("%w: progress bar style %q, want full width", ErrUnexpectedPage, style)
	}
	if err := r.Pause(ctx, PauseStep); err != nil {
		return err
	}
	return markCompleted(ctx, r)
}

func logout(ctx context.Context, r *Runner) error {
	if err := r.driver.WaitVisible(ctx, selLogoutLink); err != nil {
		return err
	}
	if err := r.driver.ScrollClick(ctx, selLogoutLink); err != nil {
		return err
	}
	return r.Pause(ctx, PauseStep)
}

// PickOption returns the index of the first label containing want.
func PickOption(labels []string, want string) (int, bool) {
	for i, label := range labels {
		if strings.Contains(label, want) {
			return i, true
		}
	}
	return -1, false
}

// ParseScore reads a numeric score, tolerating a trailing percent sign.
func ParseScore(text string) (float64, bool) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "%"))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FullWidth reports whether an inline style sets width to 100%.
func FullWidth(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(name) == "width" && strings.TrimSpace(value) == "100%" {
			return true
		}
	}
	return false
}
