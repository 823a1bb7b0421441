// Package logger wraps log/slog behind a package-level getter/setter:
// lifecycle tied to whatever calls SetGlobal (the cmd/ entrypoint), not to
// any single component, since the Extractor/Differ/Planner/Apply Engine run
// sequentially in-process and share one logger per spec §5
// ("single-threaded cooperative within one plan").
package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	globalLogger *slog.Logger
	debugEnabled bool
	mu           sync.RWMutex
)

// SetGlobal installs logger as the package-wide logger and records the
// debug flag for components that gate verbose output on it.
func SetGlobal(l *slog.Logger, debug bool) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
	debugEnabled = debug
}

// Get returns the current global logger, falling back to a stderr text
// handler at Info level (Debug if IsDebug) when none has been installed.
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		return globalLogger
	}
	level := slog.LevelInfo
	if debugEnabled {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// IsDebug reports whether debug-level logging is enabled.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debugEnabled
}

// WithComponent returns a logger pre-tagged with component=name, the
// convention every package here uses at the top of exported entrypoints
// (extract.Extract, diffengine.Diff, planner.Plan, applyengine.RoundApply).
func WithComponent(name string) *slog.Logger {
	return Get().With("component", name)
}
