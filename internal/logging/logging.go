// Package logging provides the process-wide structured logger used by the
// family loader and CLI to report skipped or corrupt files without
// aborting a run.
package logging

import "go.uber.org/zap"

var logger = mustBuild()

func mustBuild() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// L returns the process-wide logger.
func L() *zap.Logger { return logger }

// SetVerbose swaps in a development logger (human-readable, debug level)
// for CLI --verbose runs.
func SetVerbose() {
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	logger = l
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = logger.Sync()
}
