// Package monitoring holds the library's diagnostic logging hooks. The core
// transforms are pure; the few non-fatal conditions they report (clamped
// options, off-disk fields of view, store migrations) go through Logf so that
// embedding applications can redirect or mute them.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Noticef reports a recovered, non-fatal condition. It shares the Logf sink
// but marks the line so callers can grep for policy substitutions.
func Noticef(format string, v ...interface{}) {
	Logf("notice: "+format, v...)
}
