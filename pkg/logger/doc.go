// Package logger builds log/slog loggers with request-scoped attributes and
// optional Sentry reporting.
//
// # Basic Usage
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
//			return slog.String("request_id", v), true
//		}
//		return slog.Attr{}, false
//	}
//
//	log := logger.New(requestID)
//	log.InfoContext(ctx, "request handled", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request handled","status":200,"request_id":"01J..."}
//
// [NewWithConfig] picks the output, format and minimum level; [NewNope]
// discards everything and is the default for a fresh application.
//
// # Context Extractors
//
// A [ContextExtractor] runs on every log call, so values that change per
// request are always current. Returning false skips the attribute.
// [LogHandlerDecorator] applies extractors on top of any slog.Handler.
//
// # Sentry
//
// [NewWithSentry] writes every record to the base handler and forwards
// warnings and errors to Sentry. Errors become Sentry issues. With an empty
// DSN, or if the SDK fails to initialize, only the base handler is used, so
// the same code path works in development and production.
package logger
