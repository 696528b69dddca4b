package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"democap/internal/config"
)

const userAgent = "democap/0.1.0"

// Event identifies what happened.
type Event string

const (
	EventRecordingStarted   Event = "recording_started"
	EventRecordingCompleted Event = "recording_completed"
	EventRecordingFailed    Event = "recording_failed"
	EventFramesEncoded      Event = "frames_encoded"
	EventTest               Event = "test"
)

// Payload carries event details keyed by the Key* constants.
type Payload map[string]string

const (
	KeyOutput   = "output"
	KeyDuration = "duration"
	KeySize     = "size"
	KeyFrames   = "frames"
	KeyCommand  = "command"
	KeyError    = "error"
)

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := cfg.NotifyTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

// format returns false for events that are not delivered.
func format(event Event, payload Payload) (message, bool) {
	get := func(key string) string { return strings.TrimSpace(payload[key]) }
	switch event {
	case EventRecordingCompleted:
		body := "🎬 Recorded " + get(KeyOutput)
		if details := joinNonEmpty(", ", get(KeyDuration), get(KeySize)); details != "" {
			body += " (" + details + ")"
		}
		return message{
			title: "Democap - Recording Complete",
			body:  body,
			tags:  []string{"democap", "record", "completed"},
		}, true
	case EventFramesEncoded:
		return message{
			title: "Democap - Animation Encoded",
			body:  fmt.Sprintf("🎞️ Encoded %s frames: %s", get(KeyFrames), get(KeyOutput)),
			tags:  []string{"democap", "frames", "completed"},
		}, true
	case EventRecordingFailed:
		command := get(KeyCommand)
		if command == "" {
			command = "recording"
		}
		body := fmt.Sprintf("❌ %s failed: %s", command, get(KeyError))
		if output := get(KeyOutput); output != "" {
			body += "\nOutput: " + output
		}
		return message{
			title:    "Democap - Recording Failed",
			body:     body,
			tags:     []string{"democap", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Democap - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"democap", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func joinNonEmpty(sep string, values ...string) string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

// Enabled reports whether svc actually delivers messages.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}
