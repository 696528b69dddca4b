package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"democap/internal/browser"
	"democap/internal/capture"
	"democap/internal/logging"
	"democap/internal/notifications"
	"democap/internal/preflight"
	"democap/internal/region"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var targetURL string
	var duration time.Duration
	var windowFlag string
	var readySelector string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a page in a visible browser window",
		RunE: func(cmd *cobra.Command, args []string) error {
			targetURL = strings.TrimSpace(targetURL)
			if targetURL == "" {
				return fmt.Errorf("--url is required")
			}
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}
			cfg := ctx.configValue()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := runPreflight(cmd.Context(), cfg, preflight.Scope{LiveCapture: true}, logger); err != nil {
				return err
			}

			bopts := browser.OptionsFromConfig(cfg)
			bopts.Headless = false
			bopts.Logger = logger
			if strings.TrimSpace(windowFlag) != "" {
				window, err := region.ParseWindow(windowFlag)
				if err != nil {
					return fmt.Errorf("--window: %w", err)
				}
				bopts.Window = window
			}

			store := ctx.openCatalog(logger)
			if store != nil {
				defer store.Close()
			}

			session, err := browser.Open(cmd.Context(), bopts)
			if err != nil {
				return err
			}
			defer session.Close()

			notifier := notifications.NewService(cfg)
			publish(cmd.Context(), notifier, logger, notifications.EventRecordingStarted, notifications.Payload{notifications.KeyCommand: "record"})
			recorder := capture.NewSession(ctx.sessionOptions(cfg, store, logger))
			result, err := capture.Record(cmd.Context(), recorder, session, func(runCtx context.Context) error {
				if err := session.Navigate(runCtx, targetURL); err != nil {
					return err
				}
				if readySelector != "" {
					if err := session.WaitVisible(runCtx, readySelector); err != nil {
						return err
					}
				}
				logger.Info("holding page for recording",
					logging.String("url", targetURL),
					logging.Duration("duration", duration),
				)
				return holdFor(runCtx, duration)
			})
			notifyRecording(cmd.Context(), notifier, logger, "record", result, err)
			return reportRecording(cmd.OutOrStdout(), result, err)
		},
	}

	cmd.Flags().StringVarP(&targetURL, "url", "u", "", "Page to record")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 8*time.Second, "How long to keep recording after the page loads")
	cmd.Flags().StringVarP(&windowFlag, "window", "w", "", "Browser window geometry as WIDTHxHEIGHT+X+Y")
	cmd.Flags().StringVar(&readySelector, "ready-selector", "", "Selector that must be visible before the hold starts")
	return cmd
}

func holdFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reportRecording prints the artifact kept by an interrupted recording as
// well as a successful one.
func reportRecording(out io.Writer, result capture.Result, err error) error {
	if err == nil {
		printRecordResult(out, result)
		return nil
	}
	if errors.Is(err, context.Canceled) && result.OutputPath != "" {
		fmt.Fprintln(out, "Interrupted; recording stopped early")
		printRecordResult(out, result)
	}
	return err
}

func printRecordResult(out io.Writer, result capture.Result) {
	fmt.Fprintf(out, "Recorded %s\n", result.OutputPath)
	fmt.Fprintf(out, "  Region:   %s\n", result.Region)
	fmt.Fprintf(out, "  Duration: %s\n", formatDuration(result.Duration))
	fmt.Fprintf(out, "  Size:     %s\n", formatBytes(result.SizeBytes))
	if result.Killed {
		fmt.Fprintln(out, "  Encoder did not stop in time and was killed")
	}
}
