package redline

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	globalLogger   zerolog.Logger
	globalLoggerMu sync.RWMutex
)

func init() {
	globalLogger = NewLogger(os.Stderr, "info")
}

// NewLogger creates a JSON logger writing to w at the named level.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = io.Discard
	}
	return zerolog.New(w).Level(parseLogLevel(level)).With().Timestamp().Logger()
}

func parseLogLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

// SetLogger replaces the package logger.
func SetLogger(logger zerolog.Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = logger
}

// GetLogger returns the package logger.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// SetLogLevel changes the level of the package logger.
func SetLogLevel(level string) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = globalLogger.Level(parseLogLevel(level))
}
