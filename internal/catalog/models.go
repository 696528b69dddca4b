package catalog

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of a catalogued recording.
type Status string

const (
	StatusRecording Status = "recording"
	StatusCompleted Status = "completed"
	StatusMissing   Status = "missing"
	StatusFailed    Status = "failed"
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusRecording, StatusCompleted, StatusMissing, StatusFailed}
}

// ParseStatus converts a string into a Status.
func ParseStatus(value string) (Status, bool) {
	for _, status := range AllStatuses() {
		if string(status) == value {
			return status, true
		}
	}
	return "", false
}

// Kind distinguishes live window captures from encoded frame sequences.
type Kind string

const (
	KindLive   Kind = "live"
	KindFrames Kind = "frames"
)

// Recording is one row of the recordings table.
type Recording struct {
	ID           string
	Kind         Kind
	OutputPath   string
	Display      string
	Region       string
	Status       Status
	SizeBytes    int64
	StartedAt    time.Time
	EndedAt      time.Time
	ErrorMessage string
}

// Duration is zero while the recording is still open.
func (r Recording) Duration() time.Duration {
	if r.EndedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Outcome is recorded when a capture ends.
type Outcome struct {
	Status       Status
	SizeBytes    int64
	ErrorMessage string
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value sql.NullString) time.Time {
	if !value.Valid || value.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
