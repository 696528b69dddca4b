package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"democap/internal/capture"
	"democap/internal/logging"
	"democap/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := notifications.NewService(ctx.configValue())
			if !notifications.Enabled(svc) {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications disabled; set [notifications] ntfy_topic")
				return nil
			}
			if err := svc.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}

// notifyRecording publishes the outcome of a live recording. Interrupted
// runs are not announced and delivery failures are only logged.
func notifyRecording(ctx context.Context, svc notifications.Service, logger *slog.Logger, command string, result capture.Result, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	event := notifications.EventRecordingCompleted
	payload := notifications.Payload{
		notifications.KeyCommand: command,
		notifications.KeyOutput:  outputName(result.OutputPath),
	}
	if err != nil {
		event = notifications.EventRecordingFailed
		payload[notifications.KeyError] = err.Error()
	} else {
		payload[notifications.KeyDuration] = formatDuration(result.Duration)
		payload[notifications.KeySize] = formatBytes(result.SizeBytes)
	}
	publish(ctx, svc, logger, event, payload)
}

func notifyFrames(ctx context.Context, svc notifications.Service, logger *slog.Logger, result capture.FrameResult, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		publish(ctx, svc, logger, notifications.EventRecordingFailed, notifications.Payload{
			notifications.KeyCommand: "animate",
			notifications.KeyError:   err.Error(),
		})
		return
	}
	publish(ctx, svc, logger, notifications.EventFramesEncoded, notifications.Payload{
		notifications.KeyFrames: strconv.Itoa(result.Frames),
		notifications.KeyOutput: outputName(result.Output),
	})
}

func publish(ctx context.Context, svc notifications.Service, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := svc.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		logger.Warn("notification failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "notification_failed"),
		)
	}
}

func outputName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
