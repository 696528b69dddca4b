package region

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMargin is the padding added around a browser window on every side.
const DefaultMargin = 2

// Window is the on-screen position and outer size of a browser window.
type Window struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Region is the screen rectangle handed to the encoder.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// GeometryError reports window geometry that cannot be turned into a capture region.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "invalid capture geometry: " + e.Reason
}

// FromWindow expands the window by margin on every side. The origin is
// clamped to zero; the size is not reduced to compensate.
func FromWindow(w Window, margin int) (Region, error) {
	if margin < 0 {
		return Region{}, &GeometryError{Reason: fmt.Sprintf("negative margin %d", margin)}
	}
	if w.Width <= 0 || w.Height <= 0 {
		return Region{}, &GeometryError{Reason: fmt.Sprintf("window size %dx%d", w.Width, w.Height)}
	}
	return Region{
		X:      max(0, w.X-margin),
		Y:      max(0, w.Y-margin),
		Width:  w.Width + 2*margin,
		Height: w.Height + 2*margin,
	}, nil
}

// Validate reports whether the region can be captured.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return &GeometryError{Reason: fmt.Sprintf("region size %dx%d", r.Width, r.Height)}
	}
	if r.X < 0 || r.Y < 0 {
		return &GeometryError{Reason: fmt.Sprintf("region origin %d,%d", r.X, r.Y)}
	}
	return nil
}

// Even rounds width and height down to even numbers, as yuv420p requires.
func (r Region) Even() Region {
	r.Width -= r.Width % 2
	r.Height -= r.Height % 2
	return r
}

// VideoSize renders the x11grab -video_size value.
func (r Region) VideoSize() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Offset renders the x11grab input offset suffix.
func (r Region) Offset() string {
	return fmt.Sprintf("%d,%d", r.X, r.Y)
}

// CropFilter renders an ffmpeg crop filter for the region.
func (r Region) CropFilter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", r.Width, r.Height, r.X, r.Y)
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// ParseSize parses "WIDTHxHEIGHT".
func ParseSize(value string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(value)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, &GeometryError{Reason: fmt.Sprintf("expected WIDTHxHEIGHT, got %q", value)}
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, &GeometryError{Reason: fmt.Sprintf("invalid width in %q", value)}
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, &GeometryError{Reason: fmt.Sprintf("invalid height in %q", value)}
	}
	return width, height, nil
}

// ParseWindow parses X11 geometry "WIDTHxHEIGHT[+X+Y]".
func ParseWindow(value string) (Window, error) {
	value = strings.TrimSpace(value)
	size, offset, hasOffset := strings.Cut(value, "+")
	width, height, err := ParseSize(size)
	if err != nil {
		return Window{}, err
	}
	w := Window{Width: width, Height: height}
	if !hasOffset {
		return w, nil
	}
	xs, ys, ok := strings.Cut(offset, "+")
	if !ok {
		return Window{}, &GeometryError{Reason: fmt.Sprintf("expected WIDTHxHEIGHT+X+Y, got %q", value)}
	}
	if w.X, err = strconv.Atoi(xs); err != nil || w.X < 0 {
		return Window{}, &GeometryError{Reason: fmt.Sprintf("invalid x offset in %q", value)}
	}
	if w.Y, err = strconv.Atoi(ys); err != nil || w.Y < 0 {
		return Window{}, &GeometryError{Reason: fmt.Sprintf("invalid y offset in %q", value)}
	}
	return w, nil
}
