// Package region converts browser window geometry into encoder capture
// rectangles and renders them in the forms ffmpeg expects.
package region
