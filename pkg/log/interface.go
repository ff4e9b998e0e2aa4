// Package log provides the structured logging interface used by spectro
// transforms.
//
// The interface is slog-compatible in shape and is backed by zerolog by
// default. Transforms log one debug line per Fit/Transform carrying the
// operation, the data shape and the duration, so a pipeline run can be
// reconstructed from the log stream.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("preprocessing").With(
//	    log.ModelNameKey, "MSC",
//	    log.EstimatorIDKey, id,
//	)
//	logger.Debug("transform completed",
//	    log.OperationKey, log.OperationTransform,
//	    log.SamplesKey, 120,
//	    log.FeaturesKey, 1700,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface.
//
// Fields are alternating key/value pairs. With returns a child logger that
// carries the given fields on every record.
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop processing.
	Warn(msg string, fields ...any)

	// Error logs an error condition. If the first field is an error it is
	// attached as the record's error, including its stack trace.
	//
	// Example:
	//   logger.Error("transform failed",
	//       err,
	//       log.OperationKey, log.OperationTransform,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
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

// LoggerProvider creates loggers. It is the injection point for tests and
// for applications that route spectro logs into their own sink.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for loggers created by this provider.
	SetLevel(level Level)

	// Enabled reports whether loggers from this provider emit level,
	// without creating one.
	Enabled(level Level) bool
}
