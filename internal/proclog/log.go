// Package proclog provides the logging capability injected into procedures
// and a context key for carrying the host's slog.Logger through invocations.
package proclog

import (
	"context"
	"log/slog"

	"github.com/roach88/procrt/internal/capability"
	"github.com/roach88/procrt/internal/procedure"
)

// Log is the logging capability available to procedures through a
// `proc:"resource"` field.
type Log interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// FromSlog adapts a slog.Logger to Log.
// *slog.Logger already has the right method set; this only narrows it.
func FromSlog(l *slog.Logger) Log {
	if l == nil {
		l = slog.Default()
	}
	return l
}

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// Register installs the default Log provider: each invocation gets the
// context's logger, tagged with the procedure being called when known.
func Register(r *capability.Registry) {
	capability.Provide(r, func(ctx context.Context) (Log, error) {
		logger := FromContext(ctx)
		if name, ok := procedure.NameFromContext(ctx); ok {
			logger = logger.With("procedure", name)
		}
		return FromSlog(logger), nil
	})
}
