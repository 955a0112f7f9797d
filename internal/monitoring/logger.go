package monitoring

import "log"

// Logf is the diagnostic logger shared by the simulator packages. It defaults
// to log.Printf and may be replaced by SetLogger.
var Logf func(format string, v ...any) = log.Printf

// Debugf is muted unless SetVerbose(true) was called.
var Debugf func(format string, v ...any) = func(string, ...any) {}

// SetLogger replaces Logf. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}

// SetVerbose routes Debugf to the current Logf.
func SetVerbose(on bool) {
	if !on {
		Debugf = func(string, ...any) {}
		return
	}
	Debugf = func(format string, v ...any) { Logf(format, v...) }
}
