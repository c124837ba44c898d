// Package log provides the structured logging interface used across datakit.
//
// The Logger interface mirrors log/slog: a message followed by alternating
// key/value fields. The default implementation is backed by zerolog; tests
// use TestLogger to capture entries as JSON lines.
//
//	logger := log.GetLoggerWithName("DataPreprocessor")
//	logger.Info("fit completed",
//	    log.OperationKey, log.OperationFitTransform,
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 12,
//	)
package log

import (
	"context"
	"sync"
)

// Logger is a slog-compatible structured logger.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)

	// Error logs at error level. When the first field is an error value it is
	// attached as the error together with its stack trace.
	Error(msg string, fields ...any)

	// With returns a logger that adds fields to every entry.
	With(fields ...any) Logger

	// Enabled reports whether entries at level would be written.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level with slog-compatible values.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers that share an output and a level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}

var (
	providerMu     sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(LevelInfo)
)

// SetProvider replaces the process-wide provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	globalProvider = p
}

// GetProvider returns the process-wide provider.
func GetProvider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return globalProvider
}

// GetLogger returns the default logger of the process-wide provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}
