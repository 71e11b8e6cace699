package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug records. At 60 ticks per second
// even building the attributes is measurable, so hot paths check the flag
// before calling slog.Debug.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles per-tick debug logging.
// Called once from main after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-tick debug logging is on:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("tick overran interval", "elapsed", elapsed)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
