package capture

import (
	"errors"
	"fmt"

	"democap/internal/encoder"
	"democap/internal/region"
)

var (
	// ErrAlreadyRecording is returned by Start on a session that has not been stopped.
	ErrAlreadyRecording = errors.New("capture session already recording")
	// ErrDisplayBusy is returned when another session holds the display lock.
	ErrDisplayBusy = errors.New("display is already being captured")
)

// LaunchError is the encoder launch failure surfaced by Start.
type LaunchError = encoder.LaunchError

// GeometryError is the invalid-geometry failure surfaced by Start.
type GeometryError = region.GeometryError

// OutputMissingError reports an artifact that is absent or empty after stop.
type OutputMissingError struct {
	Path string
	Err  error
}

func (e *OutputMissingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recording output %s missing: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("recording output %s is empty", e.Path)
}

func (e *OutputMissingError) Unwrap() error { return e.Err }
