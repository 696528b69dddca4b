// Package encoder builds ffmpeg argument lists and supervises encoder child
// processes.
//
// Live screen grabs run until signalled: Start launches the encoder in its own
// process group, drains stdout and stderr into bounded tail buffers, and
// treats an exit inside the grace window as a launch failure. Stop signals the
// whole group so helper processes cannot outlive a recording. Frame sequences
// are encoded with Run, which blocks until ffmpeg finishes.
package encoder
