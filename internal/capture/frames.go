package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"democap/internal/catalog"
	"democap/internal/encoder"
	"democap/internal/logging"
	"democap/internal/region"
)

// FramePattern is the printf-style name of every captured frame.
const FramePattern = "frame_%04d.png"

// Screenshotter returns one PNG of the current page.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// FrameOptions configures CaptureFrames.
type FrameOptions struct {
	Count      int
	Settings   encoder.Settings
	ScratchDir string
	Output     string
	// Crop limits the encoded picture; nil keeps the full screenshot.
	Crop   *region.Region
	Ledger Ledger
	Logger *slog.Logger
}

// FrameResult describes an encoded frame sequence.
type FrameResult struct {
	Output    string
	Frames    int
	SizeBytes int64
}

// encodeSequence is swapped in tests to inspect the scratch directory.
var encodeSequence = encoder.Run

// CaptureFrames saves Count screenshots at the encoder frame rate into a
// private scratch directory, encodes them once into Output, and removes the
// scratch directory whatever the encoder outcome.
func CaptureFrames(ctx context.Context, shots Screenshotter, opts FrameOptions) (FrameResult, error) {
	if opts.Count <= 0 {
		return FrameResult{}, fmt.Errorf("frame count must be positive, got %d", opts.Count)
	}
	if opts.Settings.Binary == "" {
		opts.Settings = encoder.DefaultSettings()
	}
	if opts.Settings.FrameRate <= 0 {
		return FrameResult{}, fmt.Errorf("frame rate must be positive, got %d", opts.Settings.FrameRate)
	}
	crop, label := "", ""
	if opts.Crop != nil {
		even := opts.Crop.Even()
		if err := even.Validate(); err != nil {
			return FrameResult{}, err
		}
		crop, label = even.CropFilter(), even.String()
	}

	id := uuid.NewString()
	logger := logging.NewComponentLogger(opts.Logger, "frames").With(logging.String(logging.FieldRecordingID, id))

	if err := os.MkdirAll(opts.ScratchDir, 0o755); err != nil {
		return FrameResult{}, fmt.Errorf("create scratch directory: %w", err)
	}
	scratch, err := os.MkdirTemp(opts.ScratchDir, "frames-")
	if err != nil {
		return FrameResult{}, fmt.Errorf("create frame directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warn("failed to remove frame directory", logging.String("path", scratch), logging.Error(err))
		}
	}()

	if dir := filepath.Dir(opts.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return FrameResult{}, fmt.Errorf("create output directory: %w", err)
		}
	}
	if opts.Ledger != nil {
		rec := catalog.Recording{ID: id, Kind: catalog.KindFrames, OutputPath: opts.Output, Region: label}
		if _, err := opts.Ledger.Begin(ctx, rec); err != nil {
			logger.Warn("catalog insert failed; capture continues untracked", logging.Error(err))
		}
	}

	result, err := captureAndEncode(ctx, shots, opts, scratch, crop, logger)
	if opts.Ledger != nil {
		outcome := catalog.Outcome{Status: catalog.StatusCompleted, SizeBytes: result.SizeBytes}
		if err != nil {
			outcome.Status = catalog.StatusFailed
			var missing *OutputMissingError
			if errors.As(err, &missing) {
				outcome.Status = catalog.StatusMissing
			}
			outcome.ErrorMessage = err.Error()
		}
		if finishErr := opts.Ledger.Finish(context.WithoutCancel(ctx), id, outcome); finishErr != nil {
			logger.Warn("catalog update failed", logging.Error(finishErr))
		}
	}
	return result, err
}

func captureAndEncode(ctx context.Context, shots Screenshotter, opts FrameOptions, scratch, crop string, logger *slog.Logger) (FrameResult, error) {
	interval := time.Second / time.Duration(opts.Settings.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("capturing frames",
		logging.Int("count", opts.Count),
		logging.Int("frame_rate", opts.Settings.FrameRate),
		logging.String("scratch", scratch),
	)
	for i := 0; i < opts.Count; i++ {
		if i > 0 {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return FrameResult{}, ctx.Err()
			}
		}
		png, err := shots.Screenshot(ctx)
		if err != nil {
			return FrameResult{}, fmt.Errorf("capture frame %d: %w", i, err)
		}
		name := filepath.Join(scratch, fmt.Sprintf(FramePattern, i))
		if err := os.WriteFile(name, png, 0o644); err != nil {
			return FrameResult{}, fmt.Errorf("write frame %d: %w", i, err)
		}
	}

	args := encoder.FrameSequenceArgs(opts.Settings, filepath.Join(scratch, FramePattern), crop, opts.Output)
	logger.Debug("encoding frames", logging.Any("args", args))
	previous, _ := os.Stat(opts.Output)
	if err := encodeSequence(ctx, opts.Settings.Binary, args); err != nil {
		removePartialOutput(logger, opts.Output, previous)
		return FrameResult{Frames: opts.Count}, fmt.Errorf("encode frames: %w", err)
	}

	result := FrameResult{Output: opts.Output, Frames: opts.Count}
	info, err := os.Stat(opts.Output)
	if err != nil {
		return result, &OutputMissingError{Path: opts.Output, Err: err}
	}
	result.SizeBytes = info.Size()
	if info.Size() == 0 {
		return result, &OutputMissingError{Path: opts.Output}
	}
	logger.Info("animation saved",
		logging.String("output", opts.Output),
		logging.Int64("size_bytes", result.SizeBytes),
	)
	return result, nil
}

// removePartialOutput deletes whatever a failed encode left at path. A file
// that existed before the encode and was not touched by it is kept.
func removePartialOutput(logger *slog.Logger, path string, previous os.FileInfo) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if previous != nil && os.SameFile(previous, info) &&
		info.ModTime().Equal(previous.ModTime()) && info.Size() == previous.Size() {
		return
	}
	if err := os.Remove(path); err != nil {
		logger.Warn("failed to remove partial output", logging.String("path", path), logging.Error(err))
		return
	}
	logger.Info("removed partial output", logging.String("path", path))
}
