package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingInvoker records every remote call with its latency.
type LoggingInvoker struct {
	next     Invoker
	logger   *slog.Logger
	provider string
}

// WithLogging wraps next so each call is logged.
func WithLogging(next Invoker, provider string, logger *slog.Logger) *LoggingInvoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingInvoker{next: next, logger: logger, provider: provider}
}

// Invoke delegates to the wrapped invoker.
func (l *LoggingInvoker) Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	start := time.Now()
	l.logger.Debug("invoking remote service",
		"provider", l.provider,
		"operation", opts.Operation,
		"web_search", opts.WebSearch,
		"prompt_bytes", len(system)+len(user))

	out, err := l.next.Invoke(ctx, system, user, opts)
	duration := time.Since(start)
	if err != nil {
		l.logger.Error("remote call failed",
			"provider", l.provider,
			"operation", opts.Operation,
			"duration", duration,
			"error", err)
		return "", err
	}

	l.logger.Info("remote call completed",
		"provider", l.provider,
		"operation", opts.Operation,
		"duration", duration,
		"output_bytes", len(out))
	return out, nil
}
