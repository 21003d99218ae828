package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns the singleton logger, initializing it with the provided level
// and the console encoding on first use.
func Get(level string) *Logger {
	return Configure(level, FormatConsole)
}

// Configure is Get with an explicit encoding. Only the first call of either
// function decides the settings; later calls return the existing instance.
func Configure(level, format string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, format)
	})
	return globalLogger
}
