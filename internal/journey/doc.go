// Package journey scripts browser walkthroughs of the learning site for demo
// recordings.
//
// A walkthrough is an ordered list of Steps executed by a Runner against a
// Driver (normally a *browser.Session). Page readiness is awaited through the
// driver's bounded waits; the pauses between actions exist only so a viewer
// can follow along and scale with Settings.DelayScale.
package journey
