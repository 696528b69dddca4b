package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRecordingID identifies a capture session's catalog row.
	FieldRecordingID = "recording_id"
	// FieldStep names the journey step being executed.
	FieldStep = "step"
	// FieldRunID identifies one CLI invocation.
	FieldRunID = "run_id"
	// FieldEventType tags lifecycle records such as step_start and step_failure.
	FieldEventType = "event_type"
)

type contextKey int

const (
	recordingIDKey contextKey = iota
	stepKey
)

// WithRecordingID stores a recording identifier on the context.
func WithRecordingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, recordingIDKey, id)
}

// WithStep stores the current journey step name on the context.
func WithStep(ctx context.Context, step string) context.Context {
	return context.WithValue(ctx, stepKey, step)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(recordingIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRecordingID, id))
	}
	if step, ok := ctx.Value(stepKey).(string); ok && step != "" {
		fields = append(fields, slog.String(FieldStep, step))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
