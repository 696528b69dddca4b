package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"democap/internal/browser"
	"democap/internal/capture"
	"democap/internal/journey"
	"democap/internal/notifications"
	"democap/internal/preflight"
)

func newJourneyCommand(ctx *commandContext) *cobra.Command {
	var baseURL string
	var username string
	var delayScale float64
	var record bool

	cmd := &cobra.Command{
		Use:   "journey",
		Short: "Walk a student through the learning site, optionally recording it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			settings := journey.SettingsFromConfig(cfg)
			if value := strings.TrimRight(strings.TrimSpace(baseURL), "/"); value != "" {
				settings.BaseURL = value
				cfg.Journey.BaseURL = value
			}
			if value := strings.TrimSpace(username); value != "" {
				settings.Username = value
			}
			if cmd.Flags().Changed("delay-scale") {
				if delayScale < 0 {
					return fmt.Errorf("--delay-scale must not be negative")
				}
				settings.DelayScale = delayScale
			}

			scope := preflight.Scope{LiveCapture: record, Journey: true}
			if err := runPreflight(cmd.Context(), cfg, scope, logger); err != nil {
				return err
			}

			bopts := browser.OptionsFromConfig(cfg)
			bopts.Logger = logger
			if record {
				bopts.Headless = false
			}
			session, err := browser.Open(cmd.Context(), bopts)
			if err != nil {
				return err
			}
			defer session.Close()

			runner := journey.NewRunner(session, settings, logger)
			steps := journey.StudentJourney()
			if !record {
				if err := runner.Run(cmd.Context(), steps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Journey completed (%d steps)\n", len(steps))
				return nil
			}

			store := ctx.openCatalog(logger)
			if store != nil {
				defer store.Close()
			}
			notifier := notifications.NewService(cfg)
			publish(cmd.Context(), notifier, logger, notifications.EventRecordingStarted, notifications.Payload{notifications.KeyCommand: "journey"})
			recorder := capture.NewSession(ctx.sessionOptions(cfg, store, logger))
			result, err := capture.Record(cmd.Context(), recorder, session, func(runCtx context.Context) error {
				return runner.Run(runCtx, steps)
			})
			notifyRecording(cmd.Context(), notifier, logger, "journey", result, err)
			return reportRecording(cmd.OutOrStdout(), result, err)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Learning site base URL (default from config)")
	cmd.Flags().StringVar(&username, "username", "", "Student account to sign in as (default from config)")
	cmd.Flags().Float64Var(&delayScale, "delay-scale", 1, "Multiplier for pacing pauses; 0 disables pacing")
	cmd.Flags().BoolVar(&record, "record", true, "Record the browser window while the journey runs")
	return cmd
}
