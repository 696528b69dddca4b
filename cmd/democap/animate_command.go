package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"democap/internal/browser"
	"democap/internal/capture"
	"democap/internal/config"
	"democap/internal/encoder"
	"democap/internal/logging"
	"democap/internal/notifications"
	"democap/internal/preflight"
	"democap/internal/region"
	"democap/internal/textutil"
)

func newAnimateCommand(ctx *commandContext) *cobra.Command {
	var targetURL string
	var frames int
	var fps int
	var sizeFlag string
	var output string
	var readySelector string
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "animate",
		Short: "Capture a page animation headless and encode it to video",
		RunE: func(cmd *cobra.Command, args []string) error {
			targetURL = strings.TrimSpace(targetURL)
			if targetURL == "" {
				return fmt.Errorf("--url is required")
			}
			cfg := ctx.configValue()
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := runPreflight(cmd.Context(), cfg, preflight.Scope{}, logger); err != nil {
				return err
			}

			width, height := cfg.Frames.Width, cfg.Frames.Height
			if strings.TrimSpace(sizeFlag) != "" {
				width, height, err = region.ParseSize(sizeFlag)
				if err != nil {
					return fmt.Errorf("--size: %w", err)
				}
			}
			if frames <= 0 {
				frames = cfg.Frames.Count
			}
			settings := encoder.NewSettings(cfg.Encoder)
			settings.FrameRate = cfg.Frames.FrameRate
			if fps > 0 {
				settings.FrameRate = fps
			}

			bopts := browser.OptionsFromConfig(cfg)
			bopts.Headless = true
			bopts.Window = region.Window{Width: width, Height: height}
			bopts.Logger = logger
			session, err := browser.Open(cmd.Context(), bopts)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.SetViewport(cmd.Context(), width, height); err != nil {
				return err
			}
			if err := session.Navigate(cmd.Context(), targetURL); err != nil {
				return err
			}
			if readySelector != "" {
				if err := session.WaitVisible(cmd.Context(), readySelector); err != nil {
					return err
				}
			}
			if settle > 0 {
				logger.Debug("waiting for page to settle", logging.Duration("settle", settle))
				if err := holdFor(cmd.Context(), settle); err != nil {
					return err
				}
			}

			opts := capture.FrameOptions{
				Count:      frames,
				Settings:   settings,
				ScratchDir: cfg.Paths.ScratchDir,
				Output:     resolveFrameOutput(cfg, output),
				Crop:       &region.Region{Width: width, Height: height},
				Logger:     logger,
			}
			if store := ctx.openCatalog(logger); store != nil {
				defer store.Close()
				opts.Ledger = store
			}
			result, err := capture.CaptureFrames(cmd.Context(), session, opts)
			notifyFrames(cmd.Context(), notifications.NewService(cfg), logger, result, err)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Encoded %d frames to %s (%s)\n", result.Frames, result.Output, formatBytes(result.SizeBytes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetURL, "url", "u", "", "Page to capture")
	cmd.Flags().IntVar(&frames, "frames", 0, "Number of frames to capture (default from config)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Capture and output frame rate (default from config)")
	cmd.Flags().StringVar(&sizeFlag, "size", "", "Viewport size as WIDTHxHEIGHT (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video file (default from config)")
	cmd.Flags().StringVar(&readySelector, "ready-selector", "", "Selector that must be visible before capture starts")
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "Delay after load before the first frame")
	return cmd
}

// resolveFrameOutput places bare file names in the recordings directory.
func resolveFrameOutput(cfg *config.Config, output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		output = cfg.Frames.Output
	}
	if !strings.ContainsRune(output, filepath.Separator) && !strings.HasPrefix(output, "~") {
		return filepath.Join(cfg.Paths.RecordingsDir, textutil.SanitizeFileName(output))
	}
	expanded, err := config.ExpandPath(output)
	if err != nil {
		return output
	}
	return filepath.Join(filepath.Dir(expanded), textutil.SanitizeFileName(filepath.Base(expanded)))
}
