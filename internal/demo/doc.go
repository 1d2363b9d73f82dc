// Package demo runs the telemetry demo loop.
//
// Every interval (five seconds by default) the loop picks one of Words at
// random, opens a span, logs "doing the loop" with the word in the msg field
// and adds 42 to the testcounter instrument tagged key=value and msg=<word>.
// The loop has no failure path of its own; it only stops when its context is
// cancelled.
package demo
