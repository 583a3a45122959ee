package app

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/culturalmap/eventmap/pkg/logging"
)

// ContextWithSignals creates a context that is cancelled when the application
// receives an interrupt or termination signal.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// withRun attaches a fresh run id and the logger to ctx. Every log line of
// the run carries the id.
func withRun(ctx context.Context, logger *zerolog.Logger) (context.Context, *zerolog.Logger) {
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithRunID(ctx, uuid.NewString())
	return ctx, logging.FromContext(ctx)
}
