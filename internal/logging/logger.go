// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, enabling request tracing
// across the entire request lifecycle. Records can additionally be shipped
// to a Seq server.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	slogseq "github.com/sokkalf/slog-seq"
)

// seqFlushInterval bounds how long a record waits in the Seq batch.
const seqFlushInterval = 2 * time.Second

// Setup configures the global slog logger and returns a function that
// flushes and closes any remote sink. Call it before exit.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// When seqURL is non-empty every record is also sent to that Seq server.
func Setup(level, format, seqURL string) func() {
	handler, closeFn := newHandler(os.Stdout, level, format, seqURL)
	slog.SetDefault(slog.New(handler))
	return closeFn
}

func newHandler(w io.Writer, level, format, seqURL string) (slog.Handler, func()) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var console slog.Handler
	if strings.ToLower(format) == "json" {
		console = slog.NewJSONHandler(w, opts)
	} else {
		console = slog.NewTextHandler(w, opts)
	}

	if seqURL == "" {
		return console, func() {}
	}

	_, seq := slogseq.NewLogger(
		seqURL,
		slogseq.WithBatchSize(50),
		slogseq.WithFlushInterval(seqFlushInterval),
		slogseq.WithHandlerOptions(opts),
	)
	if seq == nil {
		return console, func() {}
	}

	return newMultiHandler(console, seq), func() { seq.Close() }
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns a logger enriched with request context.
//
// When called with a request context that contains a chi RequestID,
// the returned logger automatically includes request_id in all log entries.
//
// Usage:
//
//	func handleRequest(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("evaluating file", "file_id", id)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	// Chi's RequestID middleware stores the ID in context
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
// Usage:
//
//	log := logging.WithFields(ctx, "batch_id", batchID)
//	log.Info("batch stored", "files", n)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
