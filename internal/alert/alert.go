// Package alert abstracts the external error-alerting integration.
// The store layer reports every data-access failure here; swapping in a
// hosted error tracker is a matter of providing another Sink.
package alert

import (
	"context"
	"log/slog"

	"taskboard/internal/trace"
)

// Sink receives failures together with routing tags.
type Sink interface {
	Capture(ctx context.Context, err error, tags map[string]string)
}

// LogSink reports captured errors through the process logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Capture(ctx context.Context, err error, tags map[string]string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{slog.Any("error", err)}
	if id := trace.ID(ctx); id != "" {
		attrs = append(attrs, slog.String("trace_id", id))
	}
	for k, v := range tags {
		attrs = append(attrs, slog.String(k, v))
	}
	logger.ErrorContext(ctx, "captured exception", attrs...)
}

// Tags builds the default tag set for a capture.
func Tags(ctx context.Context) map[string]string {
	tags := map[string]string{}
	if id := trace.ID(ctx); id != "" {
		tags["trace_id"] = id
	}
	return tags
}
