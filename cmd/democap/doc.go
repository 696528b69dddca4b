// Command democap drives a browser through product demos and records them.
//
// Live recordings grab the browser window from the X display with ffmpeg
// while a scripted walkthrough runs; animations are captured headless as a
// screenshot sequence and encoded afterwards. Every artifact is tracked in a
// local catalog listed by `democap recordings`.
package main
