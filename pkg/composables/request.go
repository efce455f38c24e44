package composables

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nimbusbi/timefact/pkg/constants"
)

// WithLogger returns a new context carrying the request-scoped log entry.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// TryUseLogger returns the logger from the context.
// If the logger is not found, the second return value will be false.
func TryUseLogger(ctx context.Context) (*logrus.Entry, bool) {
	logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry)
	return logger, ok
}

// UseLogger returns the request-scoped logger, falling back to a
// standalone entry when none was attached.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := TryUseLogger(ctx); ok {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
