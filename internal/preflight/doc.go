// Package preflight provides readiness checks for the directories, display
// and external programs democap depends on.
//
// These checks run in two contexts:
//   - Capture commands call RunAll before launching a browser or encoder so a
//     missing display or unwritable directory fails fast instead of after a
//     long walkthrough.
//   - The CLI "democap status" command renders every check, including the
//     dependency report from CheckSystemDeps.
package preflight
