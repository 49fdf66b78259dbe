package monitoring

import "log"

// Logf is the package-level diagnostic logger used by the catalog and
// light-curve pipelines. It defaults to log.Printf but may be replaced by
// SetLogger so tests can capture or mute progress output.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf carries per-file chatter (one line per input file and written
// page). It is muted until SetVerbose(true).
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose routes Debugf through the current Logf when enabled.
func SetVerbose(enabled bool) {
	if !enabled {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = func(format string, v ...interface{}) {
		Logf(format, v...)
	}
}
