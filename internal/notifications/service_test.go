package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"democap/internal/config"
	"democap/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if notifications.Enabled(svc) {
		t.Fatal("expected disabled service without topic")
	}
	if err := svc.Publish(context.Background(), notifications.EventRecordingCompleted, notifications.Payload{notifications.KeyOutput: "demo.mp4"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:  "recording completed",
			event: notifications.EventRecordingCompleted,
			payload: notifications.Payload{
				notifications.KeyOutput:   "demo_20240101_120000.mp4",
				notifications.KeyDuration: "42s",
				notifications.KeySize:     "3.1 MiB",
			},
			expectTitle:   "Democap - Recording Complete",
			expectMessage: "🎬 Recorded demo_20240101_120000.mp4 (42s, 3.1 MiB)",
			expectTags:    "democap,record,completed",
		},
		{
			name:          "recording completed without details",
			event:         notifications.EventRecordingCompleted,
			payload:       notifications.Payload{notifications.KeyOutput: "demo.mp4"},
			expectTitle:   "Democap - Recording Complete",
			expectMessage: "🎬 Recorded demo.mp4",
			expectTags:    "democap,record,completed",
		},
		{
			name:  "frames encoded",
			event: notifications.EventFramesEncoded,
			payload: notifications.Payload{
				notifications.KeyFrames: "180",
				notifications.KeyOutput: "brain_animation.mp4",
			},
			expectTitle:   "Democap - Animation Encoded",
			expectMessage: "🎞️ Encoded 180 frames: brain_animation.mp4",
			expectTags:    "democap,frames,completed",
		},
		{
			name:  "recording failed",
			event: notifications.EventRecordingFailed,
			payload: notifications.Payload{
				notifications.KeyCommand: "journey",
				notifications.KeyError:   "quiz: unexpected page state",
				notifications.KeyOutput:  "demo.mp4",
			},
			expectTitle:    "Democap - Recording Failed",
			expectMessage:  "❌ journey failed: quiz: unexpected page state\nOutput: demo.mp4",
			expectTags:     "democap,error,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "Democap - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "democap,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeoutSeconds = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresSuppressedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	for _, event := range []notifications.Event{notifications.EventRecordingStarted, "unknown"} {
		if err := svc.Publish(context.Background(), event, notifications.Payload{"value": "ignored"}); err != nil {
			t.Fatalf("expected no error for suppressed event %s, got %v", event, err)
		}
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic is read-only", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403: topic is read-only") {
		t.Fatalf("expected status error, got %v", err)
	}
}
