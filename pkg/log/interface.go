// Package log provides a structured logging interface for scifit.
//
// The Logger interface is slog-compatible so that the backing implementation can
// be swapped. The default implementation is backed by zerolog (see zerolog.go);
// SetupLogger keeps an slog JSON route for applications that standardise on slog.
//
// Example usage:
//
//	logger := log.GetLogger().With(log.ComponentKey, "leastsq")
//	logger.Debug("iteration",
//	    log.IterationKey, 3,
//	    log.ChiSquareKey, 12.5,
//	    log.LambdaKey, 1e-4,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. If the first field passed to Error is
// an error value, implementations log it under the "error" key.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Callers use it to skip building expensive fields, e.g. per-iteration
	// parameter vectors.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
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
